package modes

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/joint"
	"github.com/san-kum/shatterblade/internal/shard"
	"github.com/san-kum/shatterblade/internal/spatial"
)

const SwarmTarget = 13

// Swarm scatters the fragments into a loose cloud that floats ahead of the
// hand holding fragment 13. The cloud is pushed further out by the trigger
// axis and tightened by the button. Fragments never lock.
type Swarm struct {
	*blade.Grabbed
	rotation float64
}

func NewSwarm() *Swarm {
	s := &Swarm{Grabbed: blade.NewGrabbed("swarm", 20, SwarmTarget)}
	s.Poser = s
	return s
}

func (s *Swarm) Rotation() float64 { return s.rotation }

// Hub is the centre of the cloud.
func (s *Swarm) Hub() mgl64.Vec3 {
	h := s.Hand()
	return s.Center().Add(s.ForwardDir().Mul(1.5 * (1 + h.TriggerAxis)))
}

func (s *Swarm) size() float64 {
	if s.Hand().Button {
		return 0.5
	}
	return 1
}

// offsets derives a stable position and spin axis for a fragment from its
// body handle.
func (s *Swarm) offsets(f *shard.Fragment) (pos, normal mgl64.Vec3) {
	size := s.size()
	pos = spatial.UniqueVector(int64(f.Body()), -size, size, 0)
	normal = spatial.UniqueVector(int64(f.Index()), -size, size, 1)
	return pos, normal
}

func (s *Swarm) Pos(_ int, f *shard.Fragment) mgl64.Vec3 {
	pos, normal := s.offsets(f)
	now := s.W.Now()
	spun := spatial.AngleAxis(now*120, normal).Rotate(pos)
	return s.Hub().Add(spatial.LookRotationForward(s.SideDir()).Rotate(spun))
}

func (s *Swarm) Rot(_ int, f *shard.Fragment, at mgl64.Vec3) mgl64.Quat {
	pos, normal := s.offsets(f)
	if l := pos.Len(); l > 1e-9 {
		pos = pos.Mul((l + 0.2) / l)
	}
	spun := spatial.AngleAxis(s.rotation, normal).Rotate(pos)
	facing := s.Hub().Add(spatial.LookRotationForward(s.SideDir()).Rotate(spun)).Sub(at)
	dir := s.Hand().Velocity.Add(facing)
	if dir.LenSqr() < 1e-12 {
		return f.GuidePose().Rotation
	}
	return spatial.LookRotationForward(dir.Normalize())
}

func (s *Swarm) Update(f blade.Frame) {
	s.Grabbed.Update(f)
	s.rotation += f.Dt * 200 * (1 + s.Hand().Velocity.Len()/3)
}

func (s *Swarm) ShouldLock(*shard.Fragment) bool { return false }

// ModifyJoint softens the linear drive so the cloud trails the hand.
func (s *Swarm) ModifyJoint(_ *shard.Fragment, p joint.Params) joint.Params {
	p.Linear = engine.Drive{Spring: 100, Damper: 10, MaxForce: 1000}
	return p
}
