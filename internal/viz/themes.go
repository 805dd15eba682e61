package viz

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme defines color scheme for the TUI
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color

	// TrailFade blends trails toward Background: 0 keeps the body color.
	TrailFade float64
	// Mono draws every body in Primary.
	Mono bool
}

// Available themes
var (
	ThemeDeepSpace = Theme{
		Name:       "deep-space",
		Primary:    lipgloss.Color("#e8e8ff"),
		Secondary:  lipgloss.Color("#7aa2f7"),
		Accent:     lipgloss.Color("#ffd75f"),
		Background: lipgloss.Color("#05050f"),
		Text:       lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#5c5c7a"),
		Success:    lipgloss.Color("#00ff88"),
		Warning:    lipgloss.Color("#ffaa00"),
		Error:      lipgloss.Color("#ff4444"),
		TrailFade:  0.55,
	}

	ThemeRetroGreen = Theme{
		Name:       "retro",
		Primary:    lipgloss.Color("#00ff00"), // Green phosphor
		Secondary:  lipgloss.Color("#00cc00"),
		Accent:     lipgloss.Color("#88ff88"),
		Background: lipgloss.Color("#001100"),
		Text:       lipgloss.Color("#00ff00"),
		Muted:      lipgloss.Color("#005500"),
		Success:    lipgloss.Color("#88ff88"),
		Warning:    lipgloss.Color("#ffff00"),
		Error:      lipgloss.Color("#ff0000"),
		TrailFade:  0.6,
		Mono:       true,
	}

	ThemeMinimal = Theme{
		Name:       "minimal",
		Primary:    lipgloss.Color("#ffffff"),
		Secondary:  lipgloss.Color("#cccccc"),
		Accent:     lipgloss.Color("#0088ff"),
		Background: lipgloss.Color("#000000"),
		Text:       lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#888888"),
		Success:    lipgloss.Color("#00ff00"),
		Warning:    lipgloss.Color("#ffaa00"),
		Error:      lipgloss.Color("#ff0000"),
	}

	ThemeNebula = Theme{
		Name:       "nebula",
		Primary:    lipgloss.Color("#ff9ff3"),
		Secondary:  lipgloss.Color("#a29bfe"),
		Accent:     lipgloss.Color("#feca57"),
		Background: lipgloss.Color("#1a0b2e"),
		Text:       lipgloss.Color("#f5eaff"),
		Muted:      lipgloss.Color("#6c5b8c"),
		Success:    lipgloss.Color("#5fd068"),
		Warning:    lipgloss.Color("#ffc048"),
		Error:      lipgloss.Color("#ff4757"),
		TrailFade:  0.4,
	}

	// All available themes
	Themes = []Theme{
		ThemeDeepSpace,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeNebula,
	}
)

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after name, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// BodyColor is the terminal color of a body drawn in t.
func (t Theme) BodyColor(c color.RGBA) lipgloss.Color {
	if t.Mono {
		return t.Primary
	}
	return lipgloss.Color(fromRGBA(c).Hex())
}

// TrailColor is the body color blended toward the background in Lab space.
func (t Theme) TrailColor(c color.RGBA) lipgloss.Color {
	base := fromRGBA(c)
	if t.Mono {
		base = hexOr(t.Primary, base)
	}
	if t.TrailFade <= 0 {
		return lipgloss.Color(base.Hex())
	}
	bg := hexOr(t.Background, colorful.Color{})
	return lipgloss.Color(base.BlendLab(bg, t.TrailFade).Clamped().Hex())
}

func fromRGBA(c color.RGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func hexOr(c lipgloss.Color, fallback colorful.Color) colorful.Color {
	cf, err := colorful.Hex(string(c))
	if err != nil {
		return fallback
	}
	return cf
}
