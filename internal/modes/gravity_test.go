package modes

import (
	"testing"

	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/physics"
	"github.com/san-kum/shatterblade/internal/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGravityTethersAndThrows(t *testing.T) {
	b := newBench(t, true)
	m := b.enter(t, "gravity", SpellTarget, engine.SpellGravity).(*Gravity)
	require.NotEqual(t, engine.NoBody, m.Anchor())
	assert.Contains(t, b.labelTexts(), "Pull trigger to attract an object")

	crate := b.world.AddProp("crate", m.Center().Add(m.ForwardDir().Mul(3)), 1, 0.2)
	b.dev.SetTrigger(engine.Left, true)
	b.step(t)

	require.Equal(t, crate, m.Held())
	assert.Equal(t, 1, b.world.JointsOn(crate))
	assert.InDelta(t, 0.3, m.HeldRadius(), 1e-9)
	require.Len(t, b.fx.Effects(EffectGravity), 1)
	assert.Contains(t, b.labelTexts(), "Release trigger to throw")

	b.run(t, 1)
	anchor, _ := b.world.Pose(m.Anchor())
	held, _ := b.world.Pose(crate)
	assert.Less(t, spatial.Distance(anchor.Position, held.Position), 1.5, "the tether pulls the crate in")

	before := b.world.Velocity(crate)
	b.dev.SetTrigger(engine.Left, false)
	b.step(t)

	assert.Equal(t, engine.NoBody, m.Held())
	assert.Zero(t, b.world.JointsOn(crate))
	gained := b.world.Velocity(crate).Sub(before)
	assert.Greater(t, gained.Dot(m.ForwardDir()), 20.0)
	assert.Len(t, b.fx.Effects(EffectGravityFire), 1)

	b.run(t, 0.6)
	assert.True(t, b.fx.Effects(EffectGravity)[0].Ended)
}

func TestGravityBlast(t *testing.T) {
	b := newBench(t, false)
	m := b.enter(t, "gravity", SpellTarget, engine.SpellGravity).(*Gravity)
	h := b.dev.Hand(engine.Left)
	foe := b.world.AddCreature("foe", h.Position().Add(m.ForwardDir().Mul(3)), 0.5, 100)

	b.dev.SetButton(engine.Left, true)
	b.dev.SetTrigger(engine.Left, true)
	b.step(t)

	assert.Equal(t, engine.NoBody, m.Held(), "the button blasts instead of tethering")
	assert.Len(t, b.fx.Effects(EffectGravityAoE), 1)
	stagger := b.events(physics.EventStagger)
	require.Len(t, stagger, 1)
	assert.Equal(t, foe, stagger[0].Target)
	assert.Len(t, b.events(physics.EventDisarm), 1)

	b.dev.SetTrigger(engine.Left, false)
	b.step(t)
	b.dev.SetTrigger(engine.Left, true)
	b.step(t)
	assert.Len(t, b.fx.Effects(EffectGravityAoE), 1, "blasts share a cooldown")
}

func TestGravityExitCleansUp(t *testing.T) {
	b := newBench(t, false)
	m := b.enter(t, "gravity", SpellTarget, engine.SpellGravity).(*Gravity)
	crate := b.world.AddProp("crate", m.Center().Add(m.ForwardDir().Mul(2)), 1, 0.2)
	b.dev.SetTrigger(engine.Left, true)
	b.step(t)
	require.Equal(t, crate, m.Held())
	anchor := m.Anchor()

	b.dev.Release(engine.Left)
	b.step(t)
	assert.Equal(t, "sword", b.weapon.Mode().Name())
	assert.False(t, b.world.Exists(anchor))
	assert.Zero(t, b.world.JointsOn(crate))
	for _, e := range b.fx.Effects(EffectGravity) {
		assert.True(t, e.Ended)
	}
}

func TestGravityExitEndsThrowFade(t *testing.T) {
	b := newBench(t, false)
	m := b.enter(t, "gravity", SpellTarget, engine.SpellGravity).(*Gravity)
	crate := b.world.AddProp("crate", m.Center().Add(m.ForwardDir().Mul(2)), 1, 0.2)
	b.dev.SetTrigger(engine.Left, true)
	b.step(t)
	require.Equal(t, crate, m.Held())

	b.dev.SetTrigger(engine.Left, false)
	b.step(t)
	require.Equal(t, engine.NoBody, m.Held())
	require.True(t, b.weapon.Tasks().Running(gravityThrowKey))

	b.dev.Release(engine.Left)
	b.step(t)
	assert.Equal(t, "sword", b.weapon.Mode().Name())
	assert.False(t, b.weapon.Tasks().Running(gravityThrowKey))
	for _, e := range b.fx.Effects(EffectGravity) {
		assert.True(t, e.Ended)
	}
}
