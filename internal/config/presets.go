package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/exp/rand"

	"github.com/san-kum/orrery/internal/dynamo"
)

const au = dynamo.AU

var solarBodies = []BodyConfig{
	{Name: "sun", Mass: 1.98892e30, Radius: 30, Color: "#ffff00", Anchor: true},
	{Name: "mercury", X: 0.387 * au, VY: -47.4e3, Mass: 3.30e23, Radius: 6.2, Color: "#504e51"},
	{Name: "venus", X: 0.723 * au, VY: -35.02e3, Mass: 4.8685e24, Radius: 15, Color: "#a57c1b"},
	{Name: "earth", X: -1 * au, VY: 29.783e3, Mass: 5.9742e24, Radius: 16, Color: "#0000ff"},
	{Name: "mars", X: -1.524 * au, VY: 24.077e3, Mass: 6.39e23, Radius: 9, Color: "#ff0000"},
	{Name: "jupiter", X: 5.203 * au, VY: 13.06e3, Mass: 1898.13e24, Radius: 25, Color: "#90614d"},
	{Name: "saturn", X: 9.537 * au, VY: 9.68e3, Mass: 568.32e24, Radius: 24, Color: "#c3a171"},
	{Name: "uranus", X: 19.191 * au, VY: 6.80e3, Mass: 86.811e24, Radius: 20, Color: "#4fd0e7"},
	{Name: "neptune", X: 30.608 * au, VY: 5.43e3, Mass: 102.409e24, Radius: 19, Color: "#3e54e8"},
	{Name: "pluto", X: 39.481 * au, VY: 4.67e3, Mass: 1.303e22, Radius: 4.5, Color: "#c8e9e9"},
}

var presets = map[string]func() *Config{
	"solar": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "solar"
		cfg.Bodies = bodies(solarBodies...)
		return cfg
	},
	"inner": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "inner"
		cfg.Steps = 730
		cfg.Scale = 2 * DefaultScale
		cfg.Bodies = bodies(solarBodies[:5]...)
		return cfg
	},
	"earth": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "earth"
		cfg.Steps = 365
		cfg.Scale = 2 * DefaultScale
		earth := solarBodies[3]
		earth.VY = 0
		earth.Circular = true
		cfg.Bodies = []BodyConfig{solarBodies[0], earth}
		return cfg
	},
	"binary": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "binary"
		cfg.Steps = 730
		cfg.Scale = DefaultScale / 2

		const m = 1e30
		sep := 1 * au
		v := math.Sqrt(dynamo.G * m / (2 * sep))
		vp := math.Sqrt(dynamo.G * 2 * m / (4 * au))
		cfg.Bodies = []BodyConfig{
			{Name: "alpha", X: -sep / 2, VY: v, Mass: m, Radius: 24, Color: "#ffd27f", Anchor: true},
			{Name: "beta", X: sep / 2, VY: -v, Mass: m, Radius: 24, Color: "#9bb0ff"},
			{Name: "wanderer", Y: 4 * au, VX: vp, Mass: 5.9742e24, Radius: 10, Color: "#7fff7f"},
		}
		return cfg
	},
	"cluster": func() *Config {
		return Cluster(120, 1)
	},
}

// Cluster returns a seeded random disk of n light bodies on near-circular
// orbits around a central star. The parallel force phase engages once n
// reaches dynamo.ParallelThreshold.
func Cluster(n int, seed uint64) *Config {
	cfg := DefaultConfig()
	cfg.Name = "cluster"
	cfg.Steps = 1000
	cfg.Workers = 0
	cfg.Degenerate = dynamo.Clamp
	cfg.MinDistance = 0.01 * au
	cfg.Scale = DefaultScale / 2

	const starMass = 1.98892e30
	rnd := rand.New(rand.NewSource(seed))

	cfg.Bodies = make([]BodyConfig, 0, n+1)
	cfg.Bodies = append(cfg.Bodies, BodyConfig{Name: "star", Mass: starMass, Radius: 30, Color: "#fff4e8", Anchor: true})
	for i := 0; i < n; i++ {
		r := (0.5 + 4.5*rnd.Float64()) * au
		theta := 2 * math.Pi * rnd.Float64()
		v := math.Sqrt(dynamo.G*starMass/r) * (0.95 + 0.1*rnd.Float64())

		x, y := r*math.Cos(theta), r*math.Sin(theta)
		hue := 360 * rnd.Float64()
		cfg.Bodies = append(cfg.Bodies, BodyConfig{
			Name:   fmt.Sprintf("c%03d", i),
			X:      x,
			Y:      y,
			VX:     y / r * v,
			VY:     -x / r * v,
			Mass:   math.Pow(10, 22+3*rnd.Float64()),
			Radius: 2 + 4*rnd.Float64(),
			Color:  colorful.Hcl(hue, 0.6, 0.7).Clamped().Hex(),
		})
	}
	return cfg
}

func bodies(src ...BodyConfig) []BodyConfig {
	return append([]BodyConfig(nil), src...)
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
