package engine

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/spatial"
)

// Hand is a snapshot of one player hand for the current frame.
type Hand struct {
	Side        Side
	Body        BodyID
	Pose        spatial.Pose
	Velocity    mgl64.Vec3
	Trigger     bool
	Button      bool
	TriggerAxis float64
	Spell       Spell
}

// PalmDir points out of the palm.
func (h Hand) PalmDir() mgl64.Vec3 { return h.Pose.Forward().Mul(-1) }

// PointDir points along the extended index finger.
func (h Hand) PointDir() mgl64.Vec3 { return h.Pose.Right().Mul(-1) }

// ThumbDir points along the thumb; it is mirrored between hands.
func (h Hand) ThumbDir() mgl64.Vec3 {
	if h.Side == Right {
		return h.Pose.Up()
	}
	return h.Pose.Up().Mul(-1)
}

func (h Hand) Palm() mgl64.Vec3 {
	return h.Pose.Position.Add(h.PointDir().Mul(0.1))
}

func (h Hand) Position() mgl64.Vec3 { return h.Pose.Position }
