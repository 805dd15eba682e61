package viz

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/orrery/internal/dynamo"
)

func press(t *testing.T, m tea.Model, keys ...string) (tea.Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEscape}
		default:
			msg = key(k)
		}
		m, cmd = m.Update(msg)
	}
	return m, cmd
}

func TestLauncherFlow(t *testing.T) {
	m := NewLauncher()
	assert.Contains(t, m.View(), "ORRERY")
	assert.Contains(t, m.View(), "solar")

	// Presets are sorted: binary, cluster, earth, inner, solar.
	m, _ = press(t, m, "j", "j", "enter")
	l := m.(*launcher)
	require.Equal(t, stateConfig, l.state)
	assert.Equal(t, "earth", l.selected)
	assert.Contains(t, m.View(), "EARTH")

	m, _ = press(t, m, "j", "l", "j", "l")
	assert.Equal(t, 2, l.stepsPerFrame)
	assert.Equal(t, dynamo.Sequential, l.cfg.Ordering)

	m, _ = press(t, m, "k", "k", "h")
	assert.InDelta(t, 0.5*dynamo.Day, l.cfg.Dt, 1e-9)

	m, cmd := press(t, m, "s")
	require.Equal(t, stateSim, l.state)
	assert.NotNil(t, cmd)
	assert.Equal(t, dynamo.Sequential, l.liveModel.Simulator().Config().Ordering)

	m, _ = m.Update(TickMsg{})
	assert.Equal(t, 2, l.liveModel.Simulator().Steps())
}

func TestLauncherBack(t *testing.T) {
	m, _ := press(t, NewLauncher(), "enter", "esc")
	assert.Equal(t, stateMenu, m.(*launcher).state)

	_, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
