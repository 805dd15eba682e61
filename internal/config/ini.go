package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/san-kum/orrery/internal/dynamo"
)

// iniFile is the gcfg layout of a system file:
//
//	[system]
//	name = binary
//	dt = 3600
//	ordering = sequential
//
//	[body "sun"]
//	order = 0
//	mass = 1.98892e30
//	anchor = true
//
// Bodies are subsections; gcfg hands them back as a map, so the order key
// (then the name) fixes their position in the body set.
type iniFile struct {
	System iniSystem
	Body   map[string]*iniBody
}

type iniSystem struct {
	Name        string
	Dt          float64
	G           float64
	Steps       int
	Ordering    string
	Degenerate  string
	MinDistance float64 `gcfg:"min-distance"`
	Workers     int
	Scale       float64
}

type iniBody struct {
	Order    int
	X, Y     float64
	VX       float64 `gcfg:"vx"`
	VY       float64 `gcfg:"vy"`
	Mass     float64
	Radius   float64
	Color    string
	Anchor   bool
	Circular bool
}

// IsINI reports whether path names a gcfg system file.
func IsINI(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".gcfg", ".cfg":
		return true
	}
	return false
}

// LoadINI reads a gcfg system file. Unset system keys keep the values of
// DefaultConfig.
func LoadINI(path string) (*Config, error) {
	def := DefaultConfig()
	f := iniFile{System: iniSystem{
		Name:        def.Name,
		Dt:          def.Dt,
		G:           def.G,
		Steps:       def.Steps,
		Ordering:    def.Ordering.String(),
		Degenerate:  def.Degenerate.String(),
		MinDistance: def.MinDistance,
		Workers:     def.Workers,
		Scale:       def.Scale,
	}}
	if err := gcfg.ReadFileInto(&f, path); err != nil {
		return nil, err
	}
	return f.config(path)
}

// LoadAny picks the reader from the file extension.
func LoadAny(path string) (*Config, error) {
	if IsINI(path) {
		return LoadINI(path)
	}
	return Load(path)
}

func (f *iniFile) config(path string) (*Config, error) {
	ordering, err := dynamo.ParseOrdering(f.System.Ordering)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	degenerate, err := dynamo.ParseDegeneratePolicy(f.System.Degenerate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg := &Config{
		Name:        f.System.Name,
		Dt:          f.System.Dt,
		G:           f.System.G,
		Steps:       f.System.Steps,
		Ordering:    ordering,
		Degenerate:  degenerate,
		MinDistance: f.System.MinDistance,
		Workers:     f.System.Workers,
		Scale:       f.System.Scale,
	}

	names := make([]string, 0, len(f.Body))
	for name, b := range f.Body {
		if b == nil {
			return nil, fmt.Errorf("%s: body %q: empty section", path, name)
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, oj := f.Body[names[i]].Order, f.Body[names[j]].Order
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		b := f.Body[name]
		cfg.Bodies = append(cfg.Bodies, BodyConfig{
			Name:     name,
			X:        b.X,
			Y:        b.Y,
			VX:       b.VX,
			VY:       b.VY,
			Mass:     b.Mass,
			Radius:   b.Radius,
			Color:    b.Color,
			Anchor:   b.Anchor,
			Circular: b.Circular,
		})
	}
	return cfg, nil
}
