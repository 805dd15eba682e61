package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
	"github.com/san-kum/orrery/internal/sim"
)

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name string
		n    int
		f    float64
	}{
		{"power of two", 1024, 0.0123},
		{"odd length", 999, 0.031},
		{"few cycles", 500, 0.008},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]float64, tt.n)
			for i := range data {
				data[i] = 3 + math.Sin(2*math.Pi*tt.f*float64(i)+0.4)
			}
			got := DominantFrequency(data)
			if math.Abs(got-tt.f)/tt.f > 0.03 {
				t.Errorf("expected %g, got %g", tt.f, got)
			}
		})
	}
}

func TestDominantFrequencyFlat(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = 7
	}
	if got := DominantFrequency(data); got != 0 {
		t.Errorf("expected 0 for constant input, got %g", got)
	}
	if got := DominantFrequency([]float64{1, 2}); got != 0 {
		t.Errorf("expected 0 for short input, got %g", got)
	}
}

func circularRun(t *testing.T, steps int) ([]sim.Sample, float64) {
	t.Helper()

	star, err := physics.NewBody(physics.BodyParams{Name: "star", Mass: 1, Anchor: true})
	if err != nil {
		t.Fatal(err)
	}
	planet, err := physics.NewBody(physics.BodyParams{
		Name:     "planet",
		Mass:     1e-8,
		Position: r2.Vec{X: 1},
		Velocity: r2.Vec{Y: physics.CircularVelocity(1, 1, 1)},
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg := dynamo.DefaultConfig()
	cfg.G = 1
	cfg.Dt = 0.01
	s, err := sim.New([]*physics.Body{star, planet}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	rec := sim.NewRecorder(2)
	s.AddObserver(rec)
	if _, err := s.Run(context.Background(), steps); err != nil {
		t.Fatal(err)
	}
	return rec.Samples(), KeplerPeriod(1, 1, 1)
}

func TestOrbitalPeriodMatchesKepler(t *testing.T) {
	samples, want := circularRun(t, 3200)

	got, err := OrbitalPeriod(samples, "planet", "star")
	if err != nil {
		t.Fatalf("OrbitalPeriod: %v", err)
	}
	if math.Abs(got-want)/want > 0.03 {
		t.Errorf("period %g, Kepler predicts %g", got, want)
	}

	abs, err := OrbitalPeriod(samples, "planet", "")
	if err != nil {
		t.Fatalf("OrbitalPeriod without anchor: %v", err)
	}
	if math.Abs(abs-got)/got > 1e-3 {
		t.Errorf("light anchor should not change the estimate: %g vs %g", abs, got)
	}
}

func TestOrbitalPeriodErrors(t *testing.T) {
	samples, _ := circularRun(t, 20)

	if _, err := OrbitalPeriod(samples, "planet", "star"); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
	if _, err := OrbitalPeriod(samples, "comet", ""); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData for unknown body, got %v", err)
	}
}

func TestKeplerPeriod(t *testing.T) {
	year := KeplerPeriod(dynamo.G, 1.98892e30, dynamo.AU)
	days := year / dynamo.Day
	if days < 364 || days > 367 {
		t.Errorf("expected about one year, got %.1f days", days)
	}
}
