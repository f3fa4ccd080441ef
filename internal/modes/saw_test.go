package modes

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guideDistance(t *testing.T, b *bench, index int, from func() mgl64.Vec3) float64 {
	t.Helper()
	f := b.weapon.Part(index)
	require.NotNil(t, f)
	return spatial.Distance(f.GuidePose().Position, from())
}

func TestSawDisc(t *testing.T) {
	b := newBench(t, true)
	s := b.enter(t, "saw", SawTarget, engine.SpellNone).(*Saw)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 14, 15}, s.Parts())

	assert.InDelta(t, 0.25, guideDistance(t, b, 1, s.hub), 1e-9)
	assert.InDelta(t, 0.1, guideDistance(t, b, 15, s.hub), 1e-9)
	assert.Contains(t, b.labelTexts(), "Press trigger to spin")

	b.dev.SetTrigger(engine.Left, true)
	b.step(t)
	assert.InDelta(t, 0.2, guideDistance(t, b, 1, s.hub), 1e-9)
	assert.NotContains(t, b.labelTexts(), "Press trigger to spin")
}

func TestSawSpeed(t *testing.T) {
	b := newBench(t, false)
	s := b.enter(t, "saw", SawTarget, engine.SpellNone).(*Saw)

	before := s.Rotation()
	b.run(t, 1)
	slow := s.Rotation() - before

	b.dev.SetTrigger(engine.Left, true)
	b.step(t)
	before = s.Rotation()
	b.run(t, 1)
	fast := s.Rotation() - before

	assert.InDelta(t, 80, slow, 2)
	assert.InDelta(t, 700, fast, 15)
}

func TestSawKeepsTargetFree(t *testing.T) {
	b := newBench(t, false)
	s := b.enter(t, "saw", SawTarget, engine.SpellNone).(*Saw)
	b.run(t, 2)
	target := b.weapon.Part(SawTarget)
	assert.True(t, target.IsFree())
	assert.False(t, b.weapon.ShouldReform(target))
	for _, i := range s.Parts() {
		assert.False(t, b.weapon.Part(i).IsFree(), "fragment %d", i)
	}
}
