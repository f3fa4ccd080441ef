package modes

import (
	"testing"

	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwordLabelsFollowLocking(t *testing.T) {
	b := newBench(t, true)
	w := b.weapon
	assert.Contains(t, b.labelTexts(), "Tap A/X to Shatter\n the blade")
	assert.Contains(t, b.labelTexts(), "Grab this shard to\nmake a handgun!")

	b.dev.SetButton(engine.Right, true)
	b.step(t)
	b.dev.SetButton(engine.Right, false)
	b.step(t)
	require.False(t, w.Locking())

	assert.False(t, w.HandleA().Shown())
	assert.Contains(t, b.labelTexts(), "Tap A/X to Reform\n the blade")
}

func TestExpandedLayout(t *testing.T) {
	b := newBench(t, true)
	w := b.weapon
	b.dev.SetButton(engine.Right, true)
	b.step(t)

	require.Equal(t, "expanded", w.Mode().Name())
	assert.Equal(t, blade.LayoutExpanded, w.Rig().Layout())
	assert.Contains(t, b.labelTexts(), "Release A/Touchpad to retract the blade")
	assert.Contains(t, b.labelTexts(), "Hold Trigger to form a shield")
	assert.False(t, w.GunShard().Shown())

	b.run(t, 2)
	for i := 1; i <= blade.Count; i++ {
		local := w.RootPose().Local(w.Part(i).GuidePose())
		assert.Less(t, spatial.Distance(local.Position, blade.Slot(blade.LayoutExpanded, i).Position), 1e-3, "guide %d", i)
	}

	b.dev.SetButton(engine.Right, false)
	b.step(t)
	assert.Equal(t, blade.LayoutSword, w.Rig().Layout())
	assert.True(t, w.Locking(), "a long press keeps the blade together")
}

func TestShieldSide(t *testing.T) {
	tests := []struct {
		name     string
		turn     float64
		expected blade.Layout
	}{
		{"palm away", 0, blade.LayoutShieldRight},
		{"palm along the blade", 180, blade.LayoutShieldLeft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBench(t, true)
			root := b.weapon.RootPose()
			hand := b.dev.Hand(engine.Right).Pose
			hand.Rotation = spatial.AngleAxis(tt.turn, spatial.Up).Mul(hand.Rotation)
			b.dev.SetPose(engine.Right, hand)
			b.dev.Grab(engine.Right, b.root, root)

			b.dev.SetButton(engine.Right, true)
			b.dev.SetTrigger(engine.Right, true)
			b.step(t)
			require.Equal(t, "shield", b.weapon.Mode().Name())
			assert.Equal(t, tt.expected, b.weapon.Rig().Layout())
			assert.False(t, b.weapon.HandleA().Shown())
			assert.False(t, b.weapon.HandleB().Shown())

			b.dev.SetTrigger(engine.Right, false)
			b.dev.SetButton(engine.Right, false)
			b.step(t)
			assert.False(t, b.weapon.Rig().Shield())
		})
	}
}
