package blade_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBlade(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Blade Suite")
}
