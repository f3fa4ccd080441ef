package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/experiment"
	"github.com/san-kum/shatterblade/internal/metrics"
	"github.com/san-kum/shatterblade/internal/shard"
)

const (
	canvasWidth     = 48
	canvasHeight    = 18
	historyCapacity = 40
	// viewRadius is the half width of the view in meters.
	viewRadius = 1.5
)

type TickMsg time.Time

func tick(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live view of one experiment.
type Model struct {
	exp     *experiment.Experiment
	canvas  *Canvas
	theme   Theme
	fps     int
	running bool
	help    bool
	picked  int
	last    metrics.Sample
	locked  []float64
	err     error
}

func NewModel(exp *experiment.Experiment, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		exp:     exp,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		theme:   Themes[0],
		fps:     fps,
		running: true,
		picked:  1,
		locked:  make([]float64, 0, historyCapacity),
	}
}

// WithTheme returns a copy of m drawn in theme t.
func (m Model) WithTheme(t Theme) Model {
	m.theme = t
	return m
}

func (m Model) Init() tea.Cmd { return tick(m.fps) }

// Err is the error that stopped the run, if any.
func (m Model) Err() error { return m.err }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.key(msg)
	case TickMsg:
		if m.running && m.err == nil {
			m.advance()
		}
		return m, tick(m.fps)
	}
	return m, nil
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	dev := m.exp.Device()
	w := m.exp.Weapon()
	right, left := dev.Hand(engine.Right), dev.Hand(engine.Left)
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "b":
		dev.SetButton(engine.Right, !right.Button)
	case "t":
		dev.SetTrigger(engine.Right, !right.Trigger)
	case "f":
		dev.SetTrigger(engine.Left, !left.Trigger)
	case "1", "2", "3", "4":
		dev.SetSpell(engine.Left, engine.Spell(msg.String()[0]-'1'))
	case "left":
		m.picked = (m.picked+blade.Count-2)%blade.Count + 1
	case "right":
		m.picked = m.picked%blade.Count + 1
	case "g":
		if f := w.Part(m.picked); f != nil {
			p := f.Pose()
			dev.SetPose(engine.Left, p)
			dev.Grab(engine.Left, f.Body(), p)
		}
	case "r":
		dev.Release(engine.Left)
	case "h":
		if w.Alive() {
			dev.SetHolstered(w.Root(), !w.Holstered())
		}
	case "c":
		m.theme = m.theme.next()
	case "?":
		m.help = !m.help
	}
	return m, nil
}

// advance steps the experiment as far as one tick of wall time covers.
func (m *Model) advance() {
	dt := m.exp.Config().Dt
	steps := max(1, int(1/float64(m.fps)/dt+0.5))
	for i := 0; i < steps; i++ {
		s, err := m.exp.Step()
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.last = s
	}
	m.locked = append(m.locked, float64(m.last.Locked))
	if len(m.locked) > historyCapacity {
		m.locked = m.locked[1:]
	}
}

// project maps a world point to canvas dots in a side view centred on the
// hilt: x to the right, y up.
func (m *Model) project(p, center mgl64.Vec3) (int, int) {
	wDots, hDots := float64(m.canvas.Width*2), float64(m.canvas.Height*4)
	scale := wDots / (2 * viewRadius)
	x := (p.X()-center.X())*scale + wDots/2
	y := hDots/2 - (p.Y()-center.Y())*scale
	return int(x), int(y)
}

func stateGlyph(f *shard.Fragment) rune {
	switch f.State() {
	case shard.Locked:
		return '■'
	case shard.Reforming:
		return '◆'
	}
	return '○'
}

func (m *Model) draw() {
	m.canvas.Clear()
	w := m.exp.Weapon()
	if !w.Alive() {
		return
	}
	center := w.RootPose().Position
	cx, cy := m.project(center, center)
	m.canvas.DrawLine(cx, cy, cx, cy+6)
	for _, f := range w.Parts() {
		if !f.Visible() {
			continue
		}
		x, y := m.project(f.Pose().Position, center)
		if f.HasJoint() {
			gx, gy := m.project(f.GuidePose().Position, center)
			m.canvas.DrawLine(x, y, gx, gy)
		}
		m.canvas.Mark(x, y, stateGlyph(f))
	}
}

func (m Model) glyphStyle(g rune) string {
	return lipgloss.NewStyle().Foreground(m.theme.GlyphColor(g)).Render(string(g))
}

func (m Model) View() string {
	m.draw()
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Primary).Render("SHATTERBLADE")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	if m.err != nil {
		status = "STOPPED: " + m.err.Error()
	}

	view := panelStyle.Render(strings.Join(m.canvas.Rows(m.glyphStyle), "\n"))
	side := m.sidebar()
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n", title, labelStyle.Render(m.exp.Config().Scenario), valueStyle.Render(status))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, view, " ", side))
	b.WriteString("\n")
	if m.help {
		b.WriteString(keyStyle.Render("space pause  b button  t trigger  f off-hand trigger  1-4 spell  ←/→ pick  g grab  r release  h holster  c theme  q quit"))
	} else {
		b.WriteString(keyStyle.Render("? help  q quit"))
	}
	return b.String()
}

func (m Model) sidebar() string {
	w := m.exp.Weapon()
	s := m.last
	row := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-10s", label)) + valueStyle.Render(value)
	}
	mode := s.Mode
	if mode == "" {
		mode = "-"
	}
	dev := m.exp.Device()
	lines := []string{
		row("time", fmt.Sprintf("%.2fs", s.Time)),
		row("mode", mode),
		row("switches", fmt.Sprintf("%d", s.Switches)),
		row("locked", fmt.Sprintf("%d/%d", s.Locked, blade.Count)),
		ProgressBar(float64(s.Locked)/blade.Count, 20, m.theme.Locked, m.theme.Muted),
		row("reforming", fmt.Sprintf("%d", s.Reforming)),
		row("free", fmt.Sprintf("%d", s.Free)),
		row("residual", fmt.Sprintf("%.3f", s.Residual)),
		row("pick", fmt.Sprintf("%d", m.picked)),
		row("spell", dev.Hand(engine.Left).Spell.String()),
		Sparkline(m.locked, 20, 0, blade.Count),
	}
	if s.Holstered {
		lines = append(lines, noteStyle.Render("holstered"))
	}
	if s.Violations > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.Free).Render(fmt.Sprintf("%d joint violations", s.Violations)))
	}
	for _, l := range m.exp.Presenter().VisibleLabels() {
		lines = append(lines, noteStyle.Render(strings.ReplaceAll(l.Text, "\n", " ")))
	}
	if !w.Alive() {
		lines = append(lines, noteStyle.Render("weapon despawned"))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// Snapshot draws the current state of exp in the side view.
func Snapshot(exp *experiment.Experiment) *Canvas {
	m := NewModel(exp, 30)
	m.draw()
	return m.canvas
}

// GlyphColor is the theme color for a fragment glyph drawn by the view.
func (t Theme) GlyphColor(g rune) lipgloss.Color {
	switch g {
	case '■':
		return t.Locked
	case '◆':
		return t.Reforming
	}
	return t.Free
}

// Run opens the live view full screen until the user quits.
func Run(exp *experiment.Experiment, fps int, theme string) error {
	model := NewModel(exp, fps).WithTheme(GetTheme(theme))
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok {
		return m.Err()
	}
	return nil
}
