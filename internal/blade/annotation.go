package blade

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/present"
)

// Annotation is a floating tutorial label. Labels only ever show on a
// tutorial weapon; hiding and destroying always go through.
type Annotation struct {
	labels   engine.Labels
	id       engine.LabelID
	tutorial bool
	text     string
	shown    bool
	dead     bool
}

func NewAnnotation(labels engine.Labels, anchor engine.BodyID, offset mgl64.Vec3, tutorial bool) *Annotation {
	a := &Annotation{
		labels:   labels,
		id:       labels.CreateLabel(anchor, offset),
		tutorial: tutorial,
	}
	a.Hide()
	return a
}

// SetText shows the label with text. The control glyph placeholder is
// resolved for hand when one is given.
func (a *Annotation) SetText(text string, hand *engine.Side) {
	if a == nil || a.dead || !a.tutorial {
		return
	}
	a.Show()
	a.text = present.Resolve(text, hand)
	a.labels.SetLabelText(a.id, a.text)
}

func (a *Annotation) Show() {
	if a == nil || a.dead || !a.tutorial {
		return
	}
	a.shown = true
	a.labels.ShowLabel(a.id)
}

func (a *Annotation) Hide() {
	if a == nil || a.dead {
		return
	}
	a.shown = false
	a.labels.HideLabel(a.id)
}

func (a *Annotation) SetAnchor(b engine.BodyID) {
	if a == nil || a.dead {
		return
	}
	a.labels.SetLabelAnchor(a.id, b)
}

func (a *Annotation) SetOffset(offset mgl64.Vec3) {
	if a == nil || a.dead {
		return
	}
	a.labels.SetLabelOffset(a.id, offset)
}

func (a *Annotation) Destroy() {
	if a == nil || a.dead {
		return
	}
	a.dead = true
	a.shown = false
	a.labels.DestroyLabel(a.id)
}

func (a *Annotation) ID() engine.LabelID { return a.id }
func (a *Annotation) Text() string       { return a.text }
func (a *Annotation) Shown() bool        { return a != nil && a.shown }
