// Package present records what the weapon asks the presentation layer to
// show. It implements engine.Labels and engine.Effects without rendering
// anything, keeping the latest state of every label, effect instance and
// per-fragment shader scalar for the CLI and for tests.
package present

import (
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/spatial"
	"go.uber.org/zap"
)

// ButtonPlaceholder in label text is replaced by the control glyph.
const ButtonPlaceholder = "[[BUTTON]]"

// ButtonGlyph names the secondary control. Without a hand it lists every
// controller family.
func ButtonGlyph(side *engine.Side) string {
	if side == nil {
		return "A/X/Touchpad"
	}
	if *side == engine.Left {
		return "X/Touchpad"
	}
	return "A/Touchpad"
}

// Resolve substitutes the control glyph placeholder.
func Resolve(text string, side *engine.Side) string {
	return strings.ReplaceAll(text, ButtonPlaceholder, ButtonGlyph(side))
}

type Label struct {
	ID        engine.LabelID
	Anchor    engine.BodyID
	Offset    mgl64.Vec3
	Text      string
	Visible   bool
	Destroyed bool
}

type Effect struct {
	ID        engine.EffectID
	Name      string
	Pose      spatial.Pose
	Intensity float64
	Scale     float64
	From, To  mgl64.Vec3
	Ended     bool
}

type Recorder struct {
	labels    map[engine.LabelID]*Label
	effects   map[engine.EffectID]*Effect
	spawn     map[engine.BodyID]float64
	emission  map[engine.BodyID]float64
	nextLabel engine.LabelID
	nextFx    engine.EffectID
	hand      *engine.Side
	log       *zap.Logger
}

type Option func(*Recorder)

// WithHand resolves glyphs for a single hand's controller.
func WithHand(s engine.Side) Option {
	return func(r *Recorder) { r.hand = &s }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Recorder) { r.log = l }
}

func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		labels:   make(map[engine.LabelID]*Label),
		effects:  make(map[engine.EffectID]*Effect),
		spawn:    make(map[engine.BodyID]float64),
		emission: make(map[engine.BodyID]float64),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) CreateLabel(anchor engine.BodyID, offset mgl64.Vec3) engine.LabelID {
	r.nextLabel++
	r.labels[r.nextLabel] = &Label{ID: r.nextLabel, Anchor: anchor, Offset: offset}
	return r.nextLabel
}

func (r *Recorder) label(id engine.LabelID) *Label {
	l := r.labels[id]
	if l == nil || l.Destroyed {
		return nil
	}
	return l
}

func (r *Recorder) SetLabelAnchor(id engine.LabelID, anchor engine.BodyID) {
	if l := r.label(id); l != nil {
		l.Anchor = anchor
	}
}

func (r *Recorder) SetLabelOffset(id engine.LabelID, offset mgl64.Vec3) {
	if l := r.label(id); l != nil {
		l.Offset = offset
	}
}

func (r *Recorder) SetLabelText(id engine.LabelID, text string) {
	if l := r.label(id); l != nil {
		l.Text = Resolve(text, r.hand)
	}
}

func (r *Recorder) ShowLabel(id engine.LabelID) {
	if l := r.label(id); l != nil {
		l.Visible = true
	}
}

func (r *Recorder) HideLabel(id engine.LabelID) {
	if l := r.label(id); l != nil {
		l.Visible = false
	}
}

func (r *Recorder) DestroyLabel(id engine.LabelID) {
	if l := r.label(id); l != nil {
		l.Visible = false
		l.Text = ""
		l.Destroyed = true
	}
}

// Label returns the recorded state of a label.
func (r *Recorder) Label(id engine.LabelID) (Label, bool) {
	l := r.labels[id]
	if l == nil {
		return Label{}, false
	}
	return *l, true
}

// VisibleLabels returns the live, shown labels ordered by id.
func (r *Recorder) VisibleLabels() []Label {
	var out []Label
	for _, l := range r.labels {
		if l.Visible && !l.Destroyed {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Recorder) SpawnEffect(name string, p spatial.Pose) engine.EffectID {
	r.nextFx++
	r.effects[r.nextFx] = &Effect{ID: r.nextFx, Name: name, Pose: p, Intensity: 1, Scale: 1}
	r.log.Debug("effect spawned", zap.String("effect", name))
	return r.nextFx
}

func (r *Recorder) effect(id engine.EffectID) *Effect {
	e := r.effects[id]
	if e == nil || e.Ended {
		return nil
	}
	return e
}

func (r *Recorder) SetEffectPose(id engine.EffectID, p spatial.Pose) {
	if e := r.effect(id); e != nil {
		e.Pose = p
	}
}

func (r *Recorder) SetEffectIntensity(id engine.EffectID, intensity float64) {
	if e := r.effect(id); e != nil {
		e.Intensity = intensity
	}
}

func (r *Recorder) SetEffectScale(id engine.EffectID, scale float64) {
	if e := r.effect(id); e != nil {
		e.Scale = scale
	}
}

func (r *Recorder) SetEffectEndpoints(id engine.EffectID, from, to mgl64.Vec3) {
	if e := r.effect(id); e != nil {
		e.From, e.To = from, to
	}
}

func (r *Recorder) EndEffect(id engine.EffectID) {
	if e := r.effect(id); e != nil {
		e.Ended = true
	}
}

func (r *Recorder) SetSpawnAmount(b engine.BodyID, amount float64) { r.spawn[b] = amount }
func (r *Recorder) SetEmission(b engine.BodyID, weight float64)    { r.emission[b] = weight }

// SpawnAmount is the last materialize value set for b.
func (r *Recorder) SpawnAmount(b engine.BodyID) float64 { return r.spawn[b] }

// Emission is the last flash weight set for b.
func (r *Recorder) Emission(b engine.BodyID) float64 { return r.emission[b] }

func (r *Recorder) Effect(id engine.EffectID) (Effect, bool) {
	e := r.effects[id]
	if e == nil {
		return Effect{}, false
	}
	return *e, true
}

// Effects returns every instance spawned under name, oldest first.
func (r *Recorder) Effects(name string) []Effect {
	var out []Effect
	for _, e := range r.effects {
		if e.Name == name {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Active counts effect instances that have not ended.
func (r *Recorder) Active() int {
	n := 0
	for _, e := range r.effects {
		if !e.Ended {
			n++
		}
	}
	return n
}
