package config

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
)

const (
	DefaultSteps       = 3650
	DefaultMinDistance = 1000.0
	DefaultRadius      = 5.0
	DefaultColor       = "#c8c8c8"
)

// DefaultScale maps 250 screen units to one astronomical unit.
var DefaultScale = 250 / dynamo.AU

type Config struct {
	Name        string                  `yaml:"name"`
	Dt          float64                 `yaml:"dt"`
	G           float64                 `yaml:"g"`
	Steps       int                     `yaml:"steps"`
	Ordering    dynamo.Ordering         `yaml:"ordering"`
	Degenerate  dynamo.DegeneratePolicy `yaml:"degenerate"`
	MinDistance float64                 `yaml:"min_distance"`
	Workers     int                     `yaml:"workers"`
	Scale       float64                 `yaml:"scale"`
	Bodies      []BodyConfig            `yaml:"bodies"`
}

type BodyConfig struct {
	Name   string  `yaml:"name"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	VX     float64 `yaml:"vx,omitempty"`
	VY     float64 `yaml:"vy,omitempty"`
	Mass   float64 `yaml:"mass"`
	Radius float64 `yaml:"radius,omitempty"`
	Color  string  `yaml:"color,omitempty"`
	Anchor bool    `yaml:"anchor,omitempty"`
	// Circular replaces the velocity with the circular-orbit velocity
	// around the first anchor.
	Circular bool `yaml:"circular,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:        "custom",
		Dt:          dynamo.Day,
		G:           dynamo.G,
		Steps:       DefaultSteps,
		Ordering:    dynamo.TwoPhase,
		Degenerate:  dynamo.Reject,
		MinDistance: DefaultMinDistance,
		Workers:     1,
		Scale:       DefaultScale,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Sim returns the physics settings of the file.
func (c *Config) Sim() dynamo.Config {
	sc := dynamo.DefaultConfig()
	sc.Dt = c.Dt
	sc.G = c.G
	sc.Ordering = c.Ordering
	sc.Degenerate = c.Degenerate
	sc.MinDistance = c.MinDistance
	sc.Workers = c.Workers
	return sc
}

// Build turns the file into a body set and the matching simulation config.
func (c *Config) Build() ([]*physics.Body, dynamo.Config, error) {
	sc := c.Sim()
	if err := sc.Validate(); err != nil {
		return nil, sc, err
	}
	if len(c.Bodies) == 0 {
		return nil, sc, dynamo.ErrNoBodies
	}

	anchor := c.anchor()
	bodies := make([]*physics.Body, 0, len(c.Bodies))
	seen := make(map[string]int, len(c.Bodies))
	for i, bc := range c.Bodies {
		col, err := ParseColor(bc.Color)
		if err != nil {
			return nil, sc, fmt.Errorf("body %d (%s): %w", i, bc.Name, err)
		}

		radius := bc.Radius
		if radius == 0 {
			radius = DefaultRadius
		}

		vel := r2.Vec{X: bc.VX, Y: bc.VY}
		if bc.Circular {
			if anchor == nil || anchor == &c.Bodies[i] {
				return nil, sc, fmt.Errorf("%w: body %q is circular but has no anchor to orbit", dynamo.ErrInvalidParameter, bc.Name)
			}
			vel = circularVelocity(sc.G, anchor, bc)
		}

		name := bc.Name
		if name == "" {
			name = fmt.Sprintf("body-%d", i)
		}
		if j, ok := seen[name]; ok {
			return nil, sc, fmt.Errorf("%w: bodies %d and %d are both named %q", dynamo.ErrInvalidParameter, j, i, name)
		}
		seen[name] = i

		b, err := physics.NewBody(physics.BodyParams{
			Name:     name,
			Position: r2.Vec{X: bc.X, Y: bc.Y},
			Velocity: vel,
			Mass:     bc.Mass,
			Radius:   radius,
			Color:    col,
			Anchor:   bc.Anchor,
		})
		if err != nil {
			return nil, sc, err
		}
		bodies = append(bodies, b)
	}
	return bodies, sc, nil
}

// Warnings reports suspicious but legal settings.
func (c *Config) Warnings() []string {
	var warnings []string
	anchors := 0
	for _, b := range c.Bodies {
		if b.Anchor {
			anchors++
		}
	}
	switch {
	case anchors == 0 && len(c.Bodies) > 0:
		warnings = append(warnings, "no anchor body: distance labels will stay at zero")
	case anchors > 1:
		warnings = append(warnings, fmt.Sprintf("%d anchor bodies: distances are taken to whichever anchor is visited last", anchors))
	}
	if c.Steps <= 0 {
		warnings = append(warnings, "steps is not positive: run will stop immediately")
	}
	return warnings
}

func (c *Config) anchor() *BodyConfig {
	for i := range c.Bodies {
		if c.Bodies[i].Anchor {
			return &c.Bodies[i]
		}
	}
	return nil
}

// circularVelocity is the anchor's velocity plus the circular-orbit speed,
// directed clockwise like the solar preset.
func circularVelocity(g float64, anchor *BodyConfig, b BodyConfig) r2.Vec {
	dx := b.X - anchor.X
	dy := b.Y - anchor.Y
	r := math.Hypot(dx, dy)
	if r == 0 {
		return r2.Vec{X: anchor.VX, Y: anchor.VY}
	}
	v := physics.CircularVelocity(g, anchor.Mass, r)
	return r2.Vec{
		X: anchor.VX + dy/r*v,
		Y: anchor.VY - dx/r*v,
	}
}

// ParseColor accepts a "#rrggbb" hex string. An empty string yields
// DefaultColor.
func ParseColor(s string) (color.RGBA, error) {
	if s == "" {
		s = DefaultColor
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q: %v", dynamo.ErrInvalidParameter, s, err)
	}
	return toRGBA(c), nil
}

// FormatColor is the inverse of ParseColor.
func FormatColor(c color.RGBA) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
