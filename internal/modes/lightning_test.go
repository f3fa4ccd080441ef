package modes

import (
	"testing"

	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/physics"
	"github.com/san-kum/shatterblade/internal/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightningStrikes(t *testing.T) {
	b := newBench(t, true)
	m := b.enter(t, "lightning", SpellTarget, engine.SpellLightning).(*Lightning)
	assert.Contains(t, b.labelTexts(), "Hold Trigger to charge")

	at := m.Center().Add(m.ForwardDir().Mul(10))
	foe := b.world.AddCreature("foe", at, 0.5, 100)

	b.dev.SetTrigger(engine.Left, true)
	b.step(t)
	require.Len(t, b.fx.Effects(EffectLightningCharge), 1)
	assert.Contains(t, b.labelTexts(), "Release to fire")
	b.run(t, 0.5)
	assert.NotEmpty(t, b.dev.Pulses())

	b.dev.SetTrigger(engine.Left, false)
	b.step(t)

	assert.True(t, b.fx.Effects(EffectLightningCharge)[0].Ended)
	bolts := b.fx.Effects(EffectLightning)
	require.Len(t, bolts, 1)
	assert.InDelta(t, 0, spatial.Distance(bolts[0].To, at), 1e-9)

	damage := b.events(physics.EventDamage)
	require.Len(t, damage, 1)
	assert.Equal(t, foe, damage[0].Target)
	assert.InDelta(t, m.Damage, damage[0].Amount, 1e-12)
	shock := b.events(physics.EventShock)
	require.Len(t, shock, 1)
	assert.InDelta(t, m.ShockDuration, shock[0].Amount, 1e-12)
	assert.Len(t, b.events(physics.EventStagger), 1)
	assert.Len(t, b.events(physics.EventDisarm), 1)
	assert.InDelta(t, 100-m.Damage, b.world.Health(foe), 1e-12)
}

func TestLightningMissHitsTheAimPoint(t *testing.T) {
	b := newBench(t, false)
	m := b.enter(t, "lightning", SpellTarget, engine.SpellLightning).(*Lightning)
	wall := m.Center().Add(m.ForwardDir().Mul(4))
	b.world.AddBody(physics.BodySpec{Name: "wall", Pose: spatial.At(wall), Radius: 1, Kinematic: true, Collision: true, Kind: engine.HitStatic})

	b.dev.SetTrigger(engine.Left, true)
	b.step(t)
	b.dev.SetTrigger(engine.Left, false)
	b.step(t)

	bolts := b.fx.Effects(EffectLightning)
	require.Len(t, bolts, 1)
	assert.InDelta(t, 3, spatial.Distance(bolts[0].To, m.Center()), 0.05)
	assert.Empty(t, b.events(physics.EventDamage))
}

func TestLightningCooldown(t *testing.T) {
	b := newBench(t, false)
	b.enter(t, "lightning", SpellTarget, engine.SpellLightning)

	b.dev.SetTrigger(engine.Left, true)
	b.step(t)
	b.dev.SetTrigger(engine.Left, false)
	b.step(t)
	require.Len(t, b.fx.Effects(EffectLightning), 1)

	b.dev.SetTrigger(engine.Left, true)
	b.run(t, 0.5)
	assert.Len(t, b.fx.Effects(EffectLightningCharge), 1, "pressing during the cooldown does nothing")

	b.run(t, 0.6)
	assert.Len(t, b.fx.Effects(EffectLightningCharge), 2)
}
