package modes

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/shard"
	"github.com/san-kum/shatterblade/internal/spatial"
)

const SawTarget = 12

// Saw spins the fragments in a disc in front of the hand holding fragment
// 12. Pulling the trigger tightens the disc and speeds it up.
type Saw struct {
	*blade.Grabbed
	Speed float64
	Size  float64

	rotation float64
}

func NewSaw() *Saw {
	s := &Saw{Grabbed: blade.NewGrabbed("saw", 20, SawTarget), Speed: 1, Size: 1}
	s.Poser = s
	s.Labeler = s
	return s
}

func (s *Saw) Rotation() float64 { return s.rotation }

func (s *Saw) hub() mgl64.Vec3 { return s.Center().Add(s.ForwardDir().Mul(0.4)) }

func (s *Saw) Pos(i int, _ *shard.Fragment) mgl64.Vec3 {
	side, up := s.SideDir(), s.UpDir()
	if i > 9 {
		q := spatial.AngleAxis(float64(i-10)*360/5-s.rotation/3, side)
		return s.hub().Add(q.Rotate(up).Mul(s.Size * 0.1))
	}
	radius := 0.25
	if s.Trigger.Down() {
		radius = 0.2
	}
	q := spatial.AngleAxis(float64(i)*360/9+s.rotation, side)
	return s.hub().Add(q.Rotate(up).Mul(s.Size * radius))
}

func (s *Saw) Rot(_ int, _ *shard.Fragment, pos mgl64.Vec3) mgl64.Quat {
	return spatial.LookRotation(pos.Sub(s.hub()), s.SideDir())
}

func (s *Saw) UseLabel() string {
	if s.Trigger.Down() {
		return ""
	}
	return "Press trigger to spin"
}

func (s *Saw) AltLabel() string { return "" }

func (s *Saw) Update(f blade.Frame) {
	s.Grabbed.Update(f)
	rate := 80.0
	if s.Trigger.Down() {
		rate = 700
	}
	s.rotation += f.Dt * rate * s.Speed
}
