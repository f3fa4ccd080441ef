package modes

import (
	"testing"

	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectiles(b *bench, kind string) int {
	n := 0
	for _, e := range b.events(physics.EventProjectile) {
		if e.Label == kind {
			n++
		}
	}
	return n
}

func TestFlamethrowerBurns(t *testing.T) {
	b := newBench(t, true)
	m := b.enter(t, "flamethrower", SpellTarget, engine.SpellFire).(*Flamethrower)
	assert.Contains(t, b.labelTexts(), "Pull trigger to burn your foes")

	foe := b.world.AddCreature("foe", m.Center().Add(m.ForwardDir().Mul(2)), 0.5, 100)
	b.dev.SetTrigger(engine.Left, true)
	b.step(t)

	flames := b.fx.Effects(EffectFlames)
	require.Len(t, flames, 1)
	assert.False(t, flames[0].Ended)
	assert.Equal(t, FlameSpheres, projectiles(b, ProjectileSphere))
	damage := b.events(physics.EventDamage)
	require.NotEmpty(t, damage)
	assert.Equal(t, foe, damage[0].Target)
	assert.InDelta(t, FlameDamage, damage[0].Amount, 1e-12)

	b.step(t)
	assert.Equal(t, 2*FlameSpheres, projectiles(b, ProjectileSphere))

	b.dev.SetTrigger(engine.Left, false)
	b.step(t)
	flames = b.fx.Effects(EffectFlames)
	assert.True(t, flames[0].Ended)
	assert.Equal(t, 2*FlameSpheres, projectiles(b, ProjectileSphere))
}

func TestFlamethrowerFireballs(t *testing.T) {
	b := newBench(t, false)
	m := b.enter(t, "flamethrower", SpellTarget, engine.SpellFire).(*Flamethrower)

	b.dev.SetButton(engine.Left, true)
	b.dev.SetTrigger(engine.Left, true)
	b.step(t)
	assert.Len(t, m.Fireballs(), 3)
	assert.Empty(t, b.fx.Effects(EffectFlames))
	assert.Zero(t, projectiles(b, ProjectileSphere))

	b.run(t, FireballCharge+0.2)
	for _, e := range b.fx.Effects(EffectFireCharge) {
		assert.InDelta(t, 1, e.Intensity, 1e-9)
	}

	b.dev.SetTrigger(engine.Left, false)
	b.step(t)
	assert.Equal(t, 3, projectiles(b, ProjectileFireball))
	assert.Empty(t, m.Fireballs())
	for _, e := range b.fx.Effects(EffectFireCharge) {
		assert.True(t, e.Ended)
	}
}

func TestFlamethrowerFireballsNeedCharge(t *testing.T) {
	b := newBench(t, false)
	b.enter(t, "flamethrower", SpellTarget, engine.SpellFire)

	b.dev.SetButton(engine.Left, true)
	b.dev.SetTrigger(engine.Left, true)
	b.run(t, FireballCharge/2)
	b.dev.SetButton(engine.Left, false)
	b.step(t)

	assert.Zero(t, projectiles(b, ProjectileFireball))
	for _, e := range b.fx.Effects(EffectFireCharge) {
		assert.True(t, e.Ended)
	}
}

func TestFlamethrowerExitEndsEffects(t *testing.T) {
	b := newBench(t, false)
	b.enter(t, "flamethrower", SpellTarget, engine.SpellFire)
	b.dev.SetTrigger(engine.Left, true)
	b.step(t)

	b.dev.SetSpell(engine.Left, engine.SpellNone)
	b.step(t)
	assert.Equal(t, "sword", b.weapon.Mode().Name())
	for _, e := range b.fx.Effects(EffectFlames) {
		assert.True(t, e.Ended)
	}
}
