package blade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stub struct {
	Base
	name     string
	priority int
	on       bool
	tested   *[]string
}

func (s *stub) Name() string  { return s.name }
func (s *stub) Priority() int { return s.priority }
func (s *stub) Test(*Weapon) bool {
	if s.tested != nil {
		*s.tested = append(*s.tested, s.name)
	}
	return s.on
}

func names(ms []Mode) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name()
	}
	return out
}

func TestCatalogOrder(t *testing.T) {
	c, err := NewCatalog(&stub{name: "sword"},
		&stub{name: "low", priority: 1},
		&stub{name: "high", priority: 30},
		&stub{name: "tie-a", priority: 20},
		&stub{name: "tie-b", priority: 20},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "tie-a", "tie-b", "low", "sword"}, names(c.Modes()))
}

func TestCatalogSelectStopsAtFirstMatch(t *testing.T) {
	var tested []string
	c, err := NewCatalog(&stub{name: "sword"},
		&stub{name: "a", priority: 3, tested: &tested},
		&stub{name: "b", priority: 2, on: true, tested: &tested},
		&stub{name: "c", priority: 1, on: true, tested: &tested},
	)
	require.NoError(t, err)
	assert.Equal(t, "b", c.Select(nil).Name())
	assert.Equal(t, []string{"a", "b"}, tested)
}

func TestCatalogFallback(t *testing.T) {
	fallback := &stub{name: "sword"}
	c, err := NewCatalog(fallback, &stub{name: "a", priority: 1})
	require.NoError(t, err)
	assert.Same(t, fallback, c.Select(nil))
	assert.Same(t, fallback, c.Fallback())
}

func TestCatalogErrors(t *testing.T) {
	_, err := NewCatalog(nil)
	assert.ErrorIs(t, err, ErrNoFallback)

	_, err = NewCatalog(&stub{name: "sword"}, &stub{name: "a"}, &stub{name: "a"})
	assert.ErrorIs(t, err, ErrDuplicateMode)

	_, err = NewCatalog(&stub{name: "sword"}, &stub{name: "sword"})
	assert.ErrorIs(t, err, ErrDuplicateMode)
}

func TestCatalogLookup(t *testing.T) {
	c, err := NewCatalog(&stub{name: "sword"}, &stub{name: "a", priority: 1})
	require.NoError(t, err)
	m, ok := c.Lookup("sword")
	require.True(t, ok)
	assert.Equal(t, "sword", m.Name())
	_, ok = c.Lookup("missing")
	assert.False(t, ok)
}
