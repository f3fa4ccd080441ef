package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/shatterblade/internal/blade"
)

func TestLockedFraction(t *testing.T) {
	m := NewLockedFraction()
	if m.Value() != 0 {
		t.Error("expected zero before any sample")
	}

	m.Observe(Sample{Locked: 0})
	m.Observe(Sample{Locked: blade.Count})
	if math.Abs(m.Value()-0.5) > 1e-9 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestTimeToAssemble(t *testing.T) {
	m := NewTimeToAssemble()
	m.Observe(Sample{Time: 1, Locked: 3})
	if m.Value() != -1 {
		t.Errorf("expected -1 before assembly, got %f", m.Value())
	}

	m.Observe(Sample{Time: 2, Locked: blade.Count})
	m.Observe(Sample{Time: 3, Locked: blade.Count})
	if m.Value() != 2 {
		t.Errorf("expected first assembly at 2, got %f", m.Value())
	}
}

func TestResidual(t *testing.T) {
	m := NewResidual()
	m.Observe(Sample{Locked: 2, Residual: 0.4})
	m.Observe(Sample{Locked: 0, Residual: 3})
	m.Observe(Sample{Locked: 15, Residual: 0.01})

	if m.Max() != 0.4 {
		t.Errorf("expected max 0.4, got %f", m.Max())
	}
	if m.Value() != 0.01 {
		t.Errorf("expected last 0.01, got %f", m.Value())
	}
}

func TestCounters(t *testing.T) {
	v := NewViolations()
	s := NewSwitches()
	mt := NewModeTime("saw")
	for _, sample := range []Sample{
		{Mode: "sword", Switches: 0},
		{Mode: "saw", Switches: 1, Violations: 2},
		{Mode: "saw", Switches: 1},
		{Mode: "sword", Switches: 2, Violations: 1},
	} {
		v.Observe(sample)
		s.Observe(sample)
		mt.Observe(sample)
	}

	if v.Value() != 3 {
		t.Errorf("expected 3 violations, got %f", v.Value())
	}
	if s.Value() != 2 {
		t.Errorf("expected 2 switches, got %f", s.Value())
	}
	if mt.Value() != 0.5 || mt.Name() != "time_in_saw" {
		t.Errorf("unexpected mode time %s=%f", mt.Name(), mt.Value())
	}
}

func TestDefaultNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
