// Package automation plays scripted timelines of player input against a
// weapon: button and trigger presses, grabs, hand motion, holstering and
// world changes such as spawning targets or despawning bodies.
package automation

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/input"
	"github.com/san-kum/shatterblade/internal/physics"
	"github.com/san-kum/shatterblade/internal/spatial"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownAction = errors.New("automation: unknown action")
	ErrUnknownHand   = errors.New("automation: unknown hand")
	ErrUnknownSpell  = errors.New("automation: unknown spell")
	ErrBadVector     = errors.New("automation: vector needs three components")
	ErrNoPart        = errors.New("automation: fragment not present")
)

type Action string

const (
	ActionButton      Action = "button"
	ActionTrigger     Action = "trigger"
	ActionAxis        Action = "axis"
	ActionSpell       Action = "spell"
	ActionGrab        Action = "grab"
	ActionRelease     Action = "release"
	ActionMove        Action = "move"
	ActionTurn        Action = "turn"
	ActionHolster     Action = "holster"
	ActionDespawnPart Action = "despawn-part"
	ActionDestroyRoot Action = "destroy-root"
	ActionCreature    Action = "creature"
	ActionProp        Action = "prop"
)

var actions = map[Action]bool{
	ActionButton: true, ActionTrigger: true, ActionAxis: true, ActionSpell: true,
	ActionGrab: true, ActionRelease: true, ActionMove: true, ActionTurn: true,
	ActionHolster: true, ActionDespawnPart: true, ActionDestroyRoot: true,
	ActionCreature: true, ActionProp: true,
}

// Script is a named timeline of events.
type Script struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Events      []Event `yaml:"events"`
}

// Event fires once the clock reaches At. Fields are read per action.
type Event struct {
	At     float64 `yaml:"at"`
	Action Action  `yaml:"action"`
	Hand   string  `yaml:"hand,omitempty"`
	// Part is a fragment index; 0 names the root.
	Part     int       `yaml:"part,omitempty"`
	On       bool      `yaml:"on,omitempty"`
	Value    float64   `yaml:"value,omitempty"`
	Spell    string    `yaml:"spell,omitempty"`
	Position []float64 `yaml:"position,omitempty"`
	// Velocity and Until describe a hand sweep for the move action.
	Velocity []float64 `yaml:"velocity,omitempty"`
	Until    float64   `yaml:"until,omitempty"`
	Name     string    `yaml:"name,omitempty"`
	Radius   float64   `yaml:"radius,omitempty"`
	Mass     float64   `yaml:"mass,omitempty"`
	Health   float64   `yaml:"health,omitempty"`
}

// LoadScript loads a script from a YAML file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("script %s: %w", s.Name, err)
	}
	return &s, nil
}

func (s *Script) Validate() error {
	for i, e := range s.Events {
		if err := e.validate(); err != nil {
			return fmt.Errorf("event %d (%s at %.2f): %w", i+1, e.Action, e.At, err)
		}
	}
	return nil
}

func (e Event) validate() error {
	if !actions[e.Action] {
		return ErrUnknownAction
	}
	if _, err := e.side(); err != nil {
		return err
	}
	if _, ok := engine.ParseSpell(e.Spell); !ok {
		return ErrUnknownSpell
	}
	for _, v := range [][]float64{e.Position, e.Velocity} {
		if v != nil && len(v) != 3 {
			return ErrBadVector
		}
	}
	return nil
}

func (e Event) side() (engine.Side, error) {
	switch e.Hand {
	case "", "right":
		return engine.Right, nil
	case "left":
		return engine.Left, nil
	}
	return engine.Right, ErrUnknownHand
}

func vec(v []float64) mgl64.Vec3 {
	if len(v) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// Stage is what a script acts on.
type Stage interface {
	Device() *input.Device
	World() *physics.World
	Weapon() *blade.Weapon
}

type sweep struct {
	side  engine.Side
	vel   mgl64.Vec3
	until float64
}

// Player steps through a script. Events fire in time order; ties keep their
// order in the file.
type Player struct {
	script *Script
	events []Event
	next   int
	sweeps []sweep
	log    *zap.Logger

	// Spawned names the creatures and props added by the script.
	Spawned map[string]engine.BodyID
}

func NewPlayer(s *Script, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	events := append([]Event(nil), s.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })
	return &Player{
		script:  s,
		events:  events,
		log:     log.With(zap.String("script", s.Name)),
		Spawned: make(map[string]engine.BodyID),
	}
}

func (p *Player) Script() *Script { return p.script }

// Done reports whether every event fired and every sweep finished.
func (p *Player) Done() bool { return p.next >= len(p.events) && len(p.sweeps) == 0 }

// Advance fires the events due by now and moves sweeping hands by dt. It
// stops at the first event that fails.
func (p *Player) Advance(now, dt float64, st Stage) error {
	for p.next < len(p.events) && p.events[p.next].At <= now {
		e := p.events[p.next]
		p.next++
		if err := p.fire(e, now, st); err != nil {
			return fmt.Errorf("%s at %.2f: %w", e.Action, e.At, err)
		}
		p.log.Debug("event", zap.String("action", string(e.Action)), zap.Float64("at", e.At))
	}
	live := p.sweeps[:0]
	for _, s := range p.sweeps {
		dev := st.Device()
		pose := dev.Hand(s.side).Pose
		pose.Position = pose.Position.Add(s.vel.Mul(dt))
		dev.Sweep(s.side, pose, dt)
		if now < s.until {
			live = append(live, s)
		} else {
			dev.SetVelocity(s.side, mgl64.Vec3{})
		}
	}
	p.sweeps = live
	return nil
}

func (p *Player) fire(e Event, now float64, st Stage) error {
	side, err := e.side()
	if err != nil {
		return err
	}
	dev, world, w := st.Device(), st.World(), st.Weapon()
	switch e.Action {
	case ActionButton:
		dev.SetButton(side, e.On)
	case ActionTrigger:
		dev.SetTrigger(side, e.On)
	case ActionAxis:
		dev.SetTriggerAxis(side, e.Value)
	case ActionSpell:
		sp, ok := engine.ParseSpell(e.Spell)
		if !ok {
			return ErrUnknownSpell
		}
		dev.SetSpell(side, sp)
	case ActionGrab:
		return p.grab(side, e.Part, dev, w)
	case ActionRelease:
		dev.Release(side)
	case ActionMove:
		if e.Position != nil {
			pose := dev.Hand(side).Pose
			pose.Position = vec(e.Position)
			dev.SetPose(side, pose)
		}
		if e.Velocity != nil && e.Until > now {
			p.sweeps = append(p.sweeps, sweep{side: side, vel: vec(e.Velocity), until: e.Until})
		}
	case ActionTurn:
		pose := dev.Hand(side).Pose
		pose.Rotation = spatial.AngleAxis(e.Value, spatial.Up).Mul(pose.Rotation)
		dev.SetPose(side, pose)
	case ActionHolster:
		dev.SetHolstered(w.Root(), e.On)
	case ActionDespawnPart:
		f := w.Part(e.Part)
		if f == nil {
			return ErrNoPart
		}
		world.Despawn(f.Body())
	case ActionDestroyRoot:
		world.DestroyBody(w.Root())
	case ActionCreature:
		p.Spawned[e.Name] = world.AddCreature(e.Name, vec(e.Position), e.Radius, e.Health)
	case ActionProp:
		p.Spawned[e.Name] = world.AddProp(e.Name, vec(e.Position), e.Mass, e.Radius)
	default:
		return ErrUnknownAction
	}
	return nil
}

// grab puts the root or a fragment in a hand. A fragment is taken where it
// is: the hand moves onto it first.
func (p *Player) grab(side engine.Side, part int, dev *input.Device, w *blade.Weapon) error {
	if part == 0 {
		dev.Grab(side, w.Root(), w.RootPose())
		return nil
	}
	f := w.Part(part)
	if f == nil {
		return ErrNoPart
	}
	pose := f.Pose()
	dev.SetPose(side, pose)
	dev.Grab(side, f.Body(), pose)
	return nil
}
