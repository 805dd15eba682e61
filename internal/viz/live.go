package viz

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/sim"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 46
	historyCapacity = 600
	zoomStep        = 1.25
)

type TickMsg time.Time

// LiveOptions configures the live renderer. Zero values pick defaults.
type LiveOptions struct {
	Title         string
	StepsPerFrame int
	FPS           int
	Width, Height int     // canvas size in cells
	Scale         float64 // pixels per meter at ReferenceSize
	Theme         string
	MaxTrail      int
	GIFPath       string
	// Reset rebuilds the simulator for the r key. Without it r only clears
	// the panel history.
	Reset func() (*sim.Simulator, error)
}

func (o LiveOptions) withDefaults() LiveOptions {
	if o.StepsPerFrame <= 0 {
		o.StepsPerFrame = 1
	}
	if o.FPS <= 0 {
		o.FPS = 30
	}
	if o.Width <= 0 {
		o.Width = width
	}
	if o.Height <= 0 {
		o.Height = height
	}
	if o.GIFPath == "" {
		o.GIFPath = "orrery.gif"
	}
	if o.Title == "" {
		o.Title = "orrery"
	}
	return o
}

// Model is the Bubble Tea model of a running simulation. The simulator is
// only touched from Update.
type Model struct {
	sim       *sim.Simulator
	opts      LiveOptions
	canvas    *Canvas
	zoom      float64
	theme     Theme
	selected  int
	follow    bool
	labels    bool
	running   bool
	showHelp  bool
	err       error
	status    string
	initial   float64
	distances []float64
	drift     []float64
	gif       *gifRecorder
}

// NewLive wraps s in a live renderer.
func NewLive(s *sim.Simulator, opts LiveOptions) Model {
	opts = opts.withDefaults()
	m := Model{
		sim:     s,
		opts:    opts,
		canvas:  NewCanvas(opts.Width, opts.Height),
		zoom:    1,
		theme:   GetTheme(opts.Theme),
		labels:  true,
		running: true,
	}
	if m.opts.Scale <= 0 {
		w, h := m.canvas.PixelSize()
		// FitScale answers in pixels of this canvas; store it at ReferenceSize.
		m.opts.Scale = FitScale(s.Bodies(), w, h, 0.1) * ReferenceSize / float64(min(w, h))
	}
	m.attach(s)
	return m
}

func (m *Model) attach(s *sim.Simulator) {
	m.sim = s
	m.err = nil
	m.initial = s.Energy()
	m.distances = m.distances[:0]
	m.drift = m.drift[:0]
	if m.selected >= len(s.Bodies()) {
		m.selected = 0
	}
	if a := s.Anchor(); a != nil && s.Bodies()[m.selected] == a && len(s.Bodies()) > 1 {
		m.cycleBody()
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Simulator returns the simulator currently shown.
func (m Model) Simulator() *sim.Simulator { return m.sim }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stopRecording()
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "+", "=":
			m.zoom *= zoomStep
		case "-", "_":
			m.zoom /= zoomStep
		case "tab":
			m.cycleBody()
		case "t":
			m.theme = NextTheme(m.theme.Name)
		case "l":
			m.labels = !m.labels
		case "f":
			m.follow = !m.follow
		case "r":
			m.reset()
		case "g":
			if m.gif != nil {
				m.stopRecording()
			} else {
				m.gif = newGIFRecorder()
				m.status = "recording"
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		w := max(msg.Width-panelWidth-4, 10)
		h := max(msg.Height-2, 5)
		m.canvas = NewCanvas(w, h)
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		if m.gif != nil {
			m.draw()
			m.gif.Capture(m.canvas, m.theme)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	for i := 0; i < m.opts.StepsPerFrame; i++ {
		if err := m.sim.Advance(); err != nil {
			m.err = err
			m.running = false
			log.Printf("live: %v", err)
			break
		}
	}

	b := m.sim.Bodies()[m.selected]
	m.distances = appendCapped(m.distances, b.DistanceToAnchor()/1000)
	if m.initial != 0 {
		m.drift = appendCapped(m.drift, math.Abs(m.sim.Energy()-m.initial)/math.Abs(m.initial))
	}
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// cycleBody selects the next body, skipping anchors while others remain.
func (m *Model) cycleBody() {
	bodies := m.sim.Bodies()
	for range bodies {
		m.selected = (m.selected + 1) % len(bodies)
		if !bodies[m.selected].IsAnchor() {
			break
		}
	}
	m.distances = m.distances[:0]
}

func (m *Model) reset() {
	if m.opts.Reset == nil {
		m.distances = m.distances[:0]
		m.drift = m.drift[:0]
		return
	}
	s, err := m.opts.Reset()
	if err != nil {
		m.err = err
		log.Printf("live: reset: %v", err)
		return
	}
	m.attach(s)
	m.running = true
}

func (m *Model) stopRecording() {
	if m.gif == nil {
		return
	}
	n := len(m.gif.frames)
	if err := m.gif.Save(m.opts.GIFPath); err != nil {
		m.status = "gif: " + err.Error()
		log.Printf("live: %v", err)
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", n, m.opts.GIFPath)
	}
	m.gif = nil
}

func (m *Model) viewport() Viewport {
	w, h := m.canvas.PixelSize()
	vp := NewViewport(m.opts.Scale, w, h).Zoom(m.zoom)
	if m.follow {
		vp.Center = m.sim.Bodies()[m.selected].Position()
	}
	return vp
}

func (m *Model) draw() {
	m.canvas.Clear()
	DrawScene(m.canvas, m.viewport(), m.sim.Bodies(), SceneOptions{
		Theme:    m.theme,
		Labels:   m.labels,
		MaxTrail: m.opts.MaxTrail,
	})
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.opts.Title), m.theme.Primary, m.theme.Accent) + "\n\n")

	switch {
	case m.err != nil:
		s.WriteString(StatusFailed.Render("FAILED") + "\n")
		s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Error).Width(panelWidth-6).Render(m.err.Error()) + "\n")
	case m.gif != nil:
		s.WriteString(StatusRecording.Render(fmt.Sprintf("● REC %d", len(m.gif.frames))) + "\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n")
	}
	if m.status != "" {
		s.WriteString(labelStyle.Width(0).Render(m.status) + "\n")
	}
	s.WriteString("\n")

	cfg := m.sim.Config()
	body := m.sim.Bodies()[m.selected]
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", FormatTime(m.sim.Time()))
	row("Steps", fmt.Sprintf("%d", m.sim.Steps()))
	row("Bodies", fmt.Sprintf("%d", len(m.sim.Bodies())))
	row("Ordering", cfg.Ordering.String())
	row("Zoom", fmt.Sprintf("%.2fx", m.zoom))
	row("Selected", lipgloss.NewStyle().Foreground(m.theme.BodyColor(body.Color())).Render(body.Name()))
	if !body.IsAnchor() {
		row("Distance", Label(body))
	}
	speed := math.Hypot(body.Velocity().X, body.Velocity().Y)
	row("Speed", fmt.Sprintf("%.2f km/s", speed/1000))

	if len(m.distances) > 1 {
		chart := asciigraph.Plot(m.distances,
			asciigraph.Height(6),
			asciigraph.Width(panelWidth-16),
			asciigraph.Caption("distance to anchor (km)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.drift) > 0 {
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.2e", m.drift[len(m.drift)-1])) + "\n")
		s.WriteString(SparklineChart(m.drift, panelWidth-8) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause +/-:Zoom TAB:Body\nT:Theme L:Labels F:Follow\nR:Reset G:Record ?:Help Q:Quit"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  + / -    - Zoom in / out            ║
║  Tab      - Select next body         ║
║  F        - Follow selected body     ║
║  L        - Toggle distance labels   ║
║  T        - Cycle themes             ║
║  R        - Reset simulation         ║
║  G        - Toggle GIF recording     ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// FormatTime renders simulated seconds in the largest fitting unit.
func FormatTime(t float64) string {
	switch {
	case t >= 365.25*dynamo.Day:
		return fmt.Sprintf("%.2f yr", t/(365.25*dynamo.Day))
	case t >= dynamo.Day:
		return fmt.Sprintf("%.1f d", t/dynamo.Day)
	case t >= 3600:
		return fmt.Sprintf("%.1f h", t/3600)
	default:
		return fmt.Sprintf("%.2f s", t)
	}
}
