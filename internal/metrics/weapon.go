package metrics

import "math"

// Residual tracks the worst relative velocity of a locked fragment.
type Residual struct {
	max  float64
	last float64
}

func NewResidual() *Residual { return &Residual{} }

func (m *Residual) Name() string { return "residual_velocity" }

func (m *Residual) Observe(s Sample) {
	m.last = s.Residual
	if s.Locked == 0 {
		return
	}
	m.max = math.Max(m.max, s.Residual)
}

// Value is the residual on the last frame.
func (m *Residual) Value() float64 { return m.last }

// Max is the worst residual seen.
func (m *Residual) Max() float64 { return m.max }

func (m *Residual) Reset() { *m = Residual{} }

// Violations counts fragment-frames whose joint disagreed with their state.
type Violations struct {
	count int
}

func NewViolations() *Violations { return &Violations{} }

func (m *Violations) Name() string     { return "violations" }
func (m *Violations) Observe(s Sample) { m.count += s.Violations }
func (m *Violations) Value() float64   { return float64(m.count) }
func (m *Violations) Reset()           { m.count = 0 }

// Switches is the number of mode changes by the last frame.
type Switches struct {
	last int
}

func NewSwitches() *Switches { return &Switches{} }

func (m *Switches) Name() string     { return "mode_switches" }
func (m *Switches) Observe(s Sample) { m.last = s.Switches }
func (m *Switches) Value() float64   { return float64(m.last) }
func (m *Switches) Reset()           { m.last = 0 }

// ModeTime is the share of frames spent in one mode.
type ModeTime struct {
	mode    string
	in      int
	samples int
}

func NewModeTime(mode string) *ModeTime { return &ModeTime{mode: mode} }

func (m *ModeTime) Name() string { return "time_in_" + m.mode }

func (m *ModeTime) Observe(s Sample) {
	m.samples++
	if s.Mode == m.mode {
		m.in++
	}
}

func (m *ModeTime) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.in) / float64(m.samples)
}

func (m *ModeTime) Reset() { m.in, m.samples = 0, 0 }

// Default returns a fresh set of the standard weapon metrics.
func Default() []Metric {
	return []Metric{
		NewLockedFraction(),
		NewTimeToAssemble(),
		NewResidual(),
		NewViolations(),
		NewSwitches(),
		NewModeTime("sword"),
	}
}
