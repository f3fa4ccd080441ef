package metrics

import (
	"math"

	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/shard"
)

// Sample is one frame of weapon state.
type Sample struct {
	Time       float64 `json:"time"`
	Mode       string  `json:"mode"`
	Free       int     `json:"free"`
	Reforming  int     `json:"reforming"`
	Locked     int     `json:"locked"`
	Residual   float64 `json:"residual"`
	Violations int     `json:"violations"`
	Switches   int     `json:"switches"`
	Holstered  bool    `json:"holstered"`
}

// Metric folds samples into one value.
type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Capture samples w at now. Residual is the largest velocity of a locked
// fragment relative to the root point it sits on. A violation is a
// fragment whose joint disagrees with its state.
func Capture(w *blade.Weapon, now float64) Sample {
	s := Sample{Time: now, Switches: w.Switches(), Holstered: w.Alive() && w.Holstered()}
	if m := w.Mode(); m != nil {
		s.Mode = m.Name()
	}
	phys := w.Physics()
	for _, f := range w.Parts() {
		switch f.State() {
		case shard.Free:
			s.Free++
		case shard.Reforming:
			s.Reforming++
		case shard.Locked:
			s.Locked++
			if w.Alive() {
				pos := f.Pose().Position
				rel := phys.Velocity(f.Body()).Sub(phys.PointVelocity(w.Root(), pos)).Len()
				s.Residual = math.Max(s.Residual, rel)
			}
		}
		if f.HasJoint() == f.IsFree() {
			s.Violations++
		}
	}
	return s
}

// LockedFraction is the mean share of fragments locked per frame.
type LockedFraction struct {
	sum     float64
	samples int
}

func NewLockedFraction() *LockedFraction { return &LockedFraction{} }

func (m *LockedFraction) Name() string { return "locked_fraction" }

func (m *LockedFraction) Observe(s Sample) {
	m.sum += float64(s.Locked) / blade.Count
	m.samples++
}

func (m *LockedFraction) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *LockedFraction) Reset() { *m = LockedFraction{} }

// TimeToAssemble is the first time every fragment was locked, or -1.
type TimeToAssemble struct {
	at  float64
	hit bool
}

func NewTimeToAssemble() *TimeToAssemble { return &TimeToAssemble{} }

func (m *TimeToAssemble) Name() string { return "time_to_assemble" }

func (m *TimeToAssemble) Observe(s Sample) {
	if !m.hit && s.Locked == blade.Count {
		m.at, m.hit = s.Time, true
	}
}

func (m *TimeToAssemble) Value() float64 {
	if !m.hit {
		return -1
	}
	return m.at
}

func (m *TimeToAssemble) Reset() { *m = TimeToAssemble{} }
