package present

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveGlyph(t *testing.T) {
	left, right := engine.Left, engine.Right
	tests := []struct {
		side     *engine.Side
		expected string
	}{
		{nil, "Release A/X/Touchpad to retract the blade"},
		{&left, "Release X/Touchpad to retract the blade"},
		{&right, "Release A/Touchpad to retract the blade"},
	}
	for _, tt := range tests {
		if got := Resolve("Release [[BUTTON]] to retract the blade", tt.side); got != tt.expected {
			t.Errorf("Resolve: got %q, expected %q", got, tt.expected)
		}
	}
}

func TestLabelLifecycle(t *testing.T) {
	r := NewRecorder()
	id := r.CreateLabel(3, mgl64.Vec3{0, 1, -1})
	r.SetLabelText(id, "Hold [[BUTTON]] to expand")
	r.ShowLabel(id)

	l, ok := r.Label(id)
	require.True(t, ok)
	assert.Equal(t, "Hold A/X/Touchpad to expand", l.Text)
	assert.Len(t, r.VisibleLabels(), 1)

	r.DestroyLabel(id)
	r.ShowLabel(id)
	l, _ = r.Label(id)
	assert.True(t, l.Destroyed)
	assert.False(t, l.Visible)
	assert.Empty(t, r.VisibleLabels())
}

func TestEffects(t *testing.T) {
	r := NewRecorder()
	a := r.SpawnEffect("spin", spatial.Identity())
	r.SpawnEffect("spin", spatial.Identity())
	r.SetEffectIntensity(a, 0.25)
	r.EndEffect(a)
	r.SetEffectIntensity(a, 0.75)

	spins := r.Effects("spin")
	require.Len(t, spins, 2)
	assert.InDelta(t, 0.25, spins[0].Intensity, 1e-12)
	assert.True(t, spins[0].Ended)
	assert.Equal(t, 1, r.Active())
}

func TestShaderScalars(t *testing.T) {
	r := NewRecorder()
	r.SetSpawnAmount(4, 0.5)
	r.SetEmission(4, 1)
	assert.InDelta(t, 0.5, r.SpawnAmount(4), 1e-12)
	assert.InDelta(t, 1.0, r.Emission(4), 1e-12)
	assert.Zero(t, r.SpawnAmount(5))
}
