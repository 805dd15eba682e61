package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/sim"
)

var presetInfo = map[string]string{
	"solar":   "sun and nine planets",
	"inner":   "mercury to mars",
	"earth":   "one circular orbit",
	"binary":  "two stars and a wanderer",
	"cluster": "random disk, parallel forces",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuValue    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff")).Bold(true)
	menuInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// setting is one editable line of the config screen.
type setting struct {
	name   string
	value  func(*launcher) string
	adjust func(l *launcher, dir int)
}

var settings = []setting{
	{"dt (days)",
		func(l *launcher) string { return fmt.Sprintf("%.3f", l.cfg.Dt/dynamo.Day) },
		func(l *launcher, dir int) {
			if dir > 0 {
				l.cfg.Dt *= 2
			} else {
				l.cfg.Dt /= 2
			}
		}},
	{"steps/frame",
		func(l *launcher) string { return fmt.Sprintf("%d", l.stepsPerFrame) },
		func(l *launcher, dir int) { l.stepsPerFrame = max(1, l.stepsPerFrame+dir) }},
	{"ordering",
		func(l *launcher) string { return l.cfg.Ordering.String() },
		func(l *launcher, dir int) { l.cfg.Ordering = (l.cfg.Ordering + 1) % 2 }},
	{"degenerate",
		func(l *launcher) string { return l.cfg.Degenerate.String() },
		func(l *launcher, dir int) { l.cfg.Degenerate = (l.cfg.Degenerate + dynamo.DegeneratePolicy(3+dir)) % 3 }},
	{"theme",
		func(l *launcher) string { return l.theme },
		func(l *launcher, dir int) { l.theme = NextTheme(l.theme).Name }},
}

// launcher picks a preset, tunes it and hands over to the live model.
type launcher struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	paramCursor   int
	stepsPerFrame int
	theme         string
	err           error
	width, height int
	liveModel     Model
}

func NewLauncher() tea.Model {
	return &launcher{
		state:         stateMenu,
		presets:       config.ListPresets(),
		stepsPerFrame: 1,
		theme:         Themes[0].Name,
	}
}

func (m *launcher) Init() tea.Cmd { return nil }

func (m *launcher) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	if m.state == stateSim {
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m *launcher) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	}
	newLive, cmd := m.liveModel.Update(msg)
	m.liveModel = newLive.(Model)
	return m, cmd
}

func (m *launcher) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.selected)
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m *launcher) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(settings)-1 {
			m.paramCursor++
		}
	case "left", "h":
		settings[m.paramCursor].adjust(m, -1)
	case "right", "l", "enter":
		settings[m.paramCursor].adjust(m, 1)
	case "s":
		return m, m.start()
	}
	return m, nil
}

func (m *launcher) start() tea.Cmd {
	cfg := *m.cfg
	build := func() (*sim.Simulator, error) {
		bodies, sc, err := cfg.Build()
		if err != nil {
			return nil, err
		}
		return sim.New(bodies, sc)
	}

	s, err := build()
	if err != nil {
		m.err = err
		return nil
	}

	m.liveModel = NewLive(s, LiveOptions{
		Title:         cfg.Name,
		StepsPerFrame: m.stepsPerFrame,
		Scale:         cfg.Scale,
		Theme:         m.theme,
		Reset:         build,
	})
	if m.width > 0 && m.height > 0 {
		resized, _ := m.liveModel.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		m.liveModel = resized.(Model)
	}
	m.state = stateSim
	return m.liveModel.Init()
}

func (m *launcher) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	}
	return m.liveModel.View()
}

func keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuKey.Render(pairs[i]) + menuInactive.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m *launcher) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("ORRERY") + "\n    " + menuSub.Render("gravitational n-body simulator") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-10s", name)), menuValue.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuInactive.Render(fmt.Sprintf("  %-10s", name)), menuDim.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m *launcher) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(m.selected)) + "\n    " + menuSub.Render(fmt.Sprintf("%d bodies", len(m.cfg.Bodies))) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, s := range settings {
		val := fmt.Sprintf("%12s", s.value(m))
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-12s", s.name)), menuValue.Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuInactive.Render(fmt.Sprintf("  %-12s", s.name)), menuDim.Render(val)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusFailed.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunLauncher runs the preset picker full screen.
func RunLauncher() error {
	_, err := tea.NewProgram(NewLauncher(), tea.WithAltScreen()).Run()
	return err
}
