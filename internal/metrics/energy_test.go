package metrics

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
	"github.com/san-kum/orrery/internal/sim"
)

func body(t *testing.T, name string, mass float64, pos, vel r2.Vec, anchor bool) *physics.Body {
	t.Helper()
	b, err := physics.NewBody(physics.BodyParams{Name: name, Mass: mass, Position: pos, Velocity: vel, Anchor: anchor})
	if err != nil {
		t.Fatalf("NewBody(%s): %v", name, err)
	}
	return b
}

func orbit(t *testing.T, vy float64) *sim.Simulator {
	t.Helper()
	cfg := dynamo.DefaultConfig()
	cfg.G = 1
	cfg.Dt = 1e-3
	s, err := sim.New([]*physics.Body{
		body(t, "star", 1, r2.Vec{}, r2.Vec{}, true),
		body(t, "planet", 1e-6, r2.Vec{X: 1}, r2.Vec{Y: vy}, false),
	}, cfg)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	return s
}

func TestEnergyDriftFirstObservation(t *testing.T) {
	m := NewEnergyDrift(1)
	bodies := []*physics.Body{
		body(t, "a", 1, r2.Vec{}, r2.Vec{}, false),
		body(t, "b", 1, r2.Vec{X: 2}, r2.Vec{Y: 1}, false),
	}

	m.Observe(bodies, 0)
	if m.Value() != 0 {
		t.Errorf("expected zero drift on first sample, got %g", m.Value())
	}
	if want := 0.0; math.Abs(m.Current()-want) > 1e-12 {
		t.Errorf("expected energy %g, got %g", want, m.Current())
	}
}

func TestEnergyDriftStaysSmallOnCircularOrbit(t *testing.T) {
	s := orbit(t, 1)
	m := NewEnergyDrift(1)
	s.AddMetric(m)

	if _, err := s.Run(context.Background(), 5000); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.Value() > 5e-3 {
		t.Errorf("energy drift too large: %g", m.Value())
	}
	if m.Value() == 0 {
		t.Error("expected some drift from a finite step size")
	}
}

func TestEnergyDriftReset(t *testing.T) {
	s := orbit(t, 1)
	m := NewEnergyDrift(1)
	s.AddMetric(m)
	if _, err := s.Run(context.Background(), 100); err != nil {
		t.Fatalf("Run: %v", err)
	}

	m.Reset()
	if m.Value() != 0 || m.Current() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestMomentumDriftConserved(t *testing.T) {
	s := orbit(t, 0.8)
	m := NewMomentumDrift()
	s.AddMetric(m)

	if _, err := s.Run(context.Background(), 2000); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.Value() > 1e-12 {
		t.Errorf("momentum drift %g, expected conservation", m.Value())
	}
	if m.Name() != "momentum_drift" {
		t.Errorf("unexpected name %q", m.Name())
	}
}
