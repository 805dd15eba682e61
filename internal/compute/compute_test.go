package compute

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
)

func exactForces(t *testing.T, bodies []*physics.Body, g float64) []r2.Vec {
	t.Helper()
	cfg := dynamo.DefaultConfig()
	cfg.G = g
	gravity := physics.NewGravity(cfg)

	out := make([]r2.Vec, len(bodies))
	for i, b := range bodies {
		for j, other := range bodies {
			if i == j {
				continue
			}
			f, err := gravity.Attraction(b, other)
			if err != nil {
				t.Fatal(err)
			}
			out[i] = r2.Add(out[i], f)
		}
	}
	return out
}

func relErr(got, want r2.Vec) float64 {
	n := r2.Norm(want)
	if n == 0 {
		return r2.Norm(got)
	}
	return r2.Norm(r2.Sub(got, want)) / n
}

func system(t *testing.T, preset string) []*physics.Body {
	t.Helper()
	bodies, _, err := config.GetPreset(preset).Build()
	if err != nil {
		t.Fatal(err)
	}
	return bodies
}

func TestCPUBackendMatchesExact(t *testing.T) {
	tests := []struct {
		name    string
		preset  string
		workers int
	}{
		{"solar serial", "solar", 1},
		{"cluster serial", "cluster", 1},
		{"cluster parallel", "cluster", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodies := system(t, tt.preset)
			g := dynamo.G
			want := exactForces(t, bodies, g)

			backend := NewCPUBackend()
			backend.Workers = tt.workers
			got, err := backend.Forces(bodies, g)
			if err != nil {
				t.Fatal(err)
			}
			for i := range want {
				if e := relErr(got[i], want[i]); e > 1e-9 {
					t.Errorf("%s: relative error %g", bodies[i].Name(), e)
				}
			}
		})
	}
}

func TestCPUBackendCoincident(t *testing.T) {
	mk := func(name string) *physics.Body {
		b, err := physics.NewBody(physics.BodyParams{Name: name, Mass: 1, Color: color.RGBA{A: 255}})
		if err != nil {
			t.Fatal(err)
		}
		return b
	}
	bodies := []*physics.Body{mk("a"), mk("b")}

	_, err := NewCPUBackend().Forces(bodies, 1)
	if !errors.Is(err, dynamo.ErrDegenerateConfiguration) {
		t.Errorf("expected ErrDegenerateConfiguration, got %v", err)
	}

	soft := NewCPUBackend()
	soft.Softening = 1
	forces, err := soft.Forces(bodies, 1)
	if err != nil {
		t.Fatalf("softened: %v", err)
	}
	if forces[0] != (r2.Vec{}) {
		t.Errorf("coincident softened force should be zero, got %v", forces[0])
	}
}

func TestBarnesHutApproximates(t *testing.T) {
	bodies := system(t, "cluster")
	want := exactForces(t, bodies, dynamo.G)

	exact, err := NewBarnesHut(0).Forces(bodies, dynamo.G)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if e := relErr(exact[i], want[i]); e > 1e-9 {
			t.Errorf("theta 0, %s: relative error %g", bodies[i].Name(), e)
		}
	}

	approx, err := NewBarnesHut(0.5).Forces(bodies, dynamo.G)
	if err != nil {
		t.Fatal(err)
	}
	// The star's net force is a near-cancelling sum, so only the disk is
	// held to a tolerance.
	worst := 0.0
	for i := range want {
		if bodies[i].IsAnchor() {
			continue
		}
		worst = math.Max(worst, relErr(approx[i], want[i]))
	}
	if worst > 0.05 {
		t.Errorf("theta 0.5 worst relative error %g", worst)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		b, err := Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		if b.Name() != name {
			t.Errorf("expected %s, got %s", name, b.Name())
		}
	}
	if _, err := Lookup("gpu"); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}
