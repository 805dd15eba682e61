package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
)

func body(t testing.TB, name string, mass float64, pos, vel r2.Vec, anchor bool) *physics.Body {
	t.Helper()
	b, err := physics.NewBody(physics.BodyParams{Name: name, Mass: mass, Position: pos, Velocity: vel, Anchor: anchor})
	if err != nil {
		t.Fatalf("NewBody(%s): %v", name, err)
	}
	return b
}

func unitConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.G = 1
	cfg.Dt = 1
	return cfg
}

func triangle(t testing.TB) []*physics.Body {
	return []*physics.Body{
		body(t, "a", 3, r2.Vec{X: 0, Y: 0}, r2.Vec{}, true),
		body(t, "b", 2, r2.Vec{X: 4, Y: 0}, r2.Vec{Y: 0.5}, false),
		body(t, "c", 1, r2.Vec{X: 1, Y: 5}, r2.Vec{X: -0.25}, false),
	}
}

func TestPairs(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 3}, {10, 45},
	}

	for _, tt := range tests {
		pairs := Pairs(tt.n)
		if len(pairs) != tt.want {
			t.Errorf("Pairs(%d) has %d entries, want %d", tt.n, len(pairs), tt.want)
		}
		seen := make(map[Pair]bool)
		for _, p := range pairs {
			if p.I >= p.J {
				t.Errorf("Pairs(%d) contains unordered or self pair %v", tt.n, p)
			}
			if seen[p] {
				t.Errorf("Pairs(%d) repeats %v", tt.n, p)
			}
			seen[p] = true
		}
	}
}

func TestPartners(t *testing.T) {
	got := partners(4, Pairs(4))
	want := [][]int{{1, 2, 3}, {0, 2, 3}, {0, 1, 3}, {0, 1, 2}}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("partners[%d] = %v, want %v", i, got[i], want[i])
		}
		for k := range want[i] {
			if got[i][k] != want[i][k] {
				t.Errorf("partners[%d] = %v, want %v", i, got[i], want[i])
				break
			}
		}
	}
}

func TestNew_Invalid(t *testing.T) {
	a := body(t, "a", 1, r2.Vec{}, r2.Vec{}, false)
	badCfg := unitConfig()
	badCfg.Dt = 0

	tests := []struct {
		name    string
		bodies  []*physics.Body
		cfg     dynamo.Config
		wantErr error
	}{
		{"empty", nil, unitConfig(), dynamo.ErrNoBodies},
		{"nil body", []*physics.Body{a, nil}, unitConfig(), dynamo.ErrInvalidParameter},
		{"duplicate", []*physics.Body{a, a}, unitConfig(), dynamo.ErrInvalidParameter},
		{"zero value body", []*physics.Body{a, {}}, unitConfig(), dynamo.ErrInvalidParameter},
		{"bad config", []*physics.Body{a}, badCfg, dynamo.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.bodies, tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if s != nil {
				t.Error("expected nil simulator")
			}
		})
	}
}

func TestAdvance_TwoBodyScenario(t *testing.T) {
	light := body(t, "light", 10, r2.Vec{X: 0}, r2.Vec{}, false)
	heavy := body(t, "heavy", 1000, r2.Vec{X: 10}, r2.Vec{}, true)

	s, err := New([]*physics.Body{light, heavy}, unitConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Advance(); err != nil {
		t.Fatal(err)
	}

	// F = 1*10*1000/10² = 100 on both; a_light = 10, a_heavy = 0.1.
	if v := light.Velocity(); math.Abs(v.X-10) > 1e-12 || math.Abs(v.Y) > 1e-12 {
		t.Errorf("light velocity = %v, want (10, 0)", v)
	}
	if p := light.Position(); math.Abs(p.X-10) > 1e-12 || math.Abs(p.Y) > 1e-12 {
		t.Errorf("light position = %v, want (10, 0)", p)
	}
	if v := heavy.Velocity(); math.Abs(v.X+0.1) > 1e-12 {
		t.Errorf("heavy velocity = %v, want (-0.1, 0)", v)
	}
	if p := heavy.Position(); math.Abs(p.X-9.9) > 1e-12 {
		t.Errorf("heavy position = %v, want (9.9, 0)", p)
	}
	if light.DistanceToAnchor() != 10 {
		t.Errorf("DistanceToAnchor() = %g, want 10", light.DistanceToAnchor())
	}
	if s.Steps() != 1 || s.Time() != 1 {
		t.Errorf("steps=%d time=%g, want 1, 1", s.Steps(), s.Time())
	}
}

func TestAdvance_Trail(t *testing.T) {
	bodies := triangle(t)
	s, err := New(bodies, unitConfig())
	if err != nil {
		t.Fatal(err)
	}

	for _, b := range bodies {
		if len(b.Trail()) != 0 {
			t.Fatalf("%s starts with a trail of %d", b.Name(), len(b.Trail()))
		}
	}

	const steps = 7
	for i := 1; i <= steps; i++ {
		if err := s.Advance(); err != nil {
			t.Fatal(err)
		}
		for _, b := range bodies {
			trail := b.Trail()
			if len(trail) != i {
				t.Fatalf("step %d: %s trail length %d", i, b.Name(), len(trail))
			}
			if trail[len(trail)-1] != b.Position() {
				t.Errorf("step %d: %s trail ends at %v, position %v", i, b.Name(), trail[len(trail)-1], b.Position())
			}
		}
	}
}

func TestAdvance_DistanceToAnchorUsesPreStepPositions(t *testing.T) {
	bodies := triangle(t)
	s, err := New(bodies, unitConfig())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		anchor := bodies[0].Position()
		before := []r2.Vec{bodies[1].Position(), bodies[2].Position()}

		if err := s.Advance(); err != nil {
			t.Fatal(err)
		}

		for k, b := range bodies[1:] {
			dx, dy := anchor.X-before[k].X, anchor.Y-before[k].Y
			want := math.Sqrt(dx*dx + dy*dy)
			if b.DistanceToAnchor() != want {
				t.Errorf("step %d: %s distance %g, want %g", i, b.Name(), b.DistanceToAnchor(), want)
			}
		}
	}
}

func TestAdvance_RejectLeavesStateUntouched(t *testing.T) {
	a := body(t, "a", 1, r2.Vec{X: 1}, r2.Vec{Y: 1}, false)
	b := body(t, "b", 1, r2.Vec{X: 5}, r2.Vec{}, false)
	c := body(t, "c", 1, r2.Vec{X: 5}, r2.Vec{}, false)

	s, err := New([]*physics.Body{a, b, c}, unitConfig())
	if err != nil {
		t.Fatal(err)
	}

	err = s.Advance()
	if !errors.Is(err, dynamo.ErrDegenerateConfiguration) {
		t.Fatalf("expected ErrDegenerateConfiguration, got %v", err)
	}
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) || simErr.Body != "b" || simErr.Step != 0 {
		t.Errorf("unexpected error context: %#v", err)
	}

	if a.Position() != (r2.Vec{X: 1}) || a.Velocity() != (r2.Vec{Y: 1}) || len(a.Trail()) != 0 {
		t.Errorf("body a mutated by a failed step: %v", a)
	}
	if s.Steps() != 0 {
		t.Errorf("failed step counted: %d", s.Steps())
	}
}

func TestAdvance_RejectStillRecordsAnchorDistance(t *testing.T) {
	sun := body(t, "sun", 10, r2.Vec{}, r2.Vec{}, true)
	p := body(t, "p", 1, r2.Vec{X: 3, Y: 4}, r2.Vec{}, false)
	q := body(t, "q", 1, r2.Vec{Y: 20}, r2.Vec{}, false)
	r := body(t, "r", 1, r2.Vec{Y: 20}, r2.Vec{}, false)

	s, err := New([]*physics.Body{sun, p, q, r}, unitConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Advance(); !errors.Is(err, dynamo.ErrDegenerateConfiguration) {
		t.Fatalf("expected ErrDegenerateConfiguration, got %v", err)
	}

	if p.Position() != (r2.Vec{X: 3, Y: 4}) {
		t.Errorf("p moved by a failed step: %v", p.Position())
	}
	if p.DistanceToAnchor() != 5 {
		t.Errorf("p distance %g, want 5", p.DistanceToAnchor())
	}
}

func TestAdvance_SkipPolicy(t *testing.T) {
	cfg := unitConfig()
	cfg.Degenerate = dynamo.Skip

	a := body(t, "a", 1, r2.Vec{X: 0}, r2.Vec{}, false)
	b := body(t, "b", 1, r2.Vec{X: 0}, r2.Vec{}, false)
	c := body(t, "c", 4, r2.Vec{X: 2}, r2.Vec{}, false)

	s, err := New([]*physics.Body{a, b, c}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Advance(); err != nil {
		t.Fatalf("skip policy failed the step: %v", err)
	}

	// Only c pulls on a: F = 4/4 = 1.
	if v := a.Velocity(); math.Abs(v.X-1) > 1e-12 {
		t.Errorf("a velocity = %v, want (1, 0)", v)
	}
}

func TestAdvance_InvalidState(t *testing.T) {
	cfg := unitConfig()
	cfg.Dt = 1e300

	a := body(t, "a", 1, r2.Vec{X: 0}, r2.Vec{}, false)
	b := body(t, "b", 1e300, r2.Vec{X: 1}, r2.Vec{}, false)

	s, err := New([]*physics.Body{a, b}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Advance(); !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

type refBody struct {
	x, y, vx, vy, m float64
	sun             bool
	dist            float64
}

// refStep updates one body at a time, each seeing the bodies already moved
// earlier in the same step.
func refStep(bodies []*refBody, g, dt float64) {
	for _, b := range bodies {
		fx, fy := 0.0, 0.0
		for _, o := range bodies {
			if o == b {
				continue
			}
			dx, dy := o.x-b.x, o.y-b.y
			d := math.Sqrt(dx*dx + dy*dy)
			if o.sun {
				b.dist = d
			}
			f := g * b.m * o.m / (d * d)
			theta := math.Atan2(dy, dx)
			fx += math.Cos(theta) * f
			fy += math.Sin(theta) * f
		}
		b.vx += fx / b.m * dt
		b.vy += fy / b.m * dt
		b.x += b.vx * dt
		b.y += b.vy * dt
	}
}

func TestSequentialMatchesPerBodyUpdate(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.Ordering = dynamo.Sequential

	bodies := []*physics.Body{
		body(t, "sun", 1.98892e30, r2.Vec{}, r2.Vec{}, true),
		body(t, "venus", 4.8685e24, r2.Vec{X: 0.723 * dynamo.AU}, r2.Vec{Y: -35.02e3}, false),
		body(t, "earth", 5.9742e24, r2.Vec{X: -dynamo.AU}, r2.Vec{Y: 29.783e3}, false),
	}
	ref := make([]*refBody, len(bodies))
	for i, b := range bodies {
		ref[i] = &refBody{x: b.Position().X, y: b.Position().Y, vx: b.Velocity().X, vy: b.Velocity().Y, m: b.Mass(), sun: b.IsAnchor()}
	}

	s, err := New(bodies, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		if err := s.Advance(); err != nil {
			t.Fatal(err)
		}
		refStep(ref, cfg.G, cfg.Dt)
	}

	for i, b := range bodies {
		r := ref[i]
		if b.Position() != (r2.Vec{X: r.x, Y: r.y}) || b.Velocity() != (r2.Vec{X: r.vx, Y: r.vy}) {
			t.Errorf("%s diverged: got %v, want p=(%g,%g) v=(%g,%g)", b.Name(), b, r.x, r.y, r.vx, r.vy)
		}
		if b.DistanceToAnchor() != r.dist {
			t.Errorf("%s distance %g, want %g", b.Name(), b.DistanceToAnchor(), r.dist)
		}
	}
}

func TestOrderingsDiffer(t *testing.T) {
	run := func(o dynamo.Ordering) []*physics.Body {
		cfg := unitConfig()
		cfg.Ordering = o
		bodies := triangle(t)
		s, err := New(bodies, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Advance(); err != nil {
			t.Fatal(err)
		}
		return bodies
	}

	twoPhase, sequential := run(dynamo.TwoPhase), run(dynamo.Sequential)

	if twoPhase[0].Position() != sequential[0].Position() {
		t.Error("first body should not depend on ordering")
	}
	if twoPhase[2].Position() == sequential[2].Position() {
		t.Error("last body should see moved bodies under sequential ordering")
	}
}

func TestTwoPhaseIndependentOfBodyOrder(t *testing.T) {
	forward := triangle(t)
	reversed := triangle(t)
	reversed[0], reversed[2] = reversed[2], reversed[0]

	for _, bodies := range [][]*physics.Body{forward, reversed} {
		s, err := New(bodies, unitConfig())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Run(context.Background(), 3); err != nil {
			t.Fatal(err)
		}
	}

	for _, f := range forward {
		for _, r := range reversed {
			if f.Name() == r.Name() && f.Position() != r.Position() {
				t.Errorf("%s: %v vs %v", f.Name(), f.Position(), r.Position())
			}
		}
	}
}

func ring(t testing.TB, n int) []*physics.Body {
	bodies := make([]*physics.Body, 0, n+1)
	bodies = append(bodies, body(t, "core", 1000, r2.Vec{}, r2.Vec{}, true))
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		r := 10 + float64(i%7)
		v := math.Sqrt(1000 / r)
		bodies = append(bodies, body(t, "p", 0.01,
			r2.Vec{X: r * math.Cos(angle), Y: r * math.Sin(angle)},
			r2.Vec{X: -v * math.Sin(angle), Y: v * math.Cos(angle)}, false))
	}
	return bodies
}

func TestParallelForcePhaseMatchesSerial(t *testing.T) {
	serial, parallel := ring(t, 100), ring(t, 100)

	for _, tc := range []struct {
		bodies  []*physics.Body
		workers int
	}{{serial, 1}, {parallel, 4}} {
		cfg := unitConfig()
		cfg.Dt = 0.01
		cfg.Workers = tc.workers
		s, err := New(tc.bodies, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Run(context.Background(), 20); err != nil {
			t.Fatal(err)
		}
	}

	for i := range serial {
		if serial[i].Position() != parallel[i].Position() {
			t.Fatalf("body %d: serial %v, parallel %v", i, serial[i].Position(), parallel[i].Position())
		}
		if serial[i].DistanceToAnchor() != parallel[i].DistanceToAnchor() {
			t.Fatalf("body %d: distance differs", i)
		}
	}
}

type countMetric struct {
	observed int
}

func (c *countMetric) Name() string                         { return "count" }
func (c *countMetric) Observe(_ []*physics.Body, _ float64) { c.observed++ }
func (c *countMetric) Value() float64                       { return float64(c.observed) }
func (c *countMetric) Reset()                               { c.observed = 0 }

func TestRun_MetricsAndObservers(t *testing.T) {
	s, err := New(triangle(t), unitConfig())
	if err != nil {
		t.Fatal(err)
	}

	m := &countMetric{}
	s.AddMetric(m)
	rec := NewRecorder(2)
	s.AddObserver(rec)

	result, err := s.Run(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}

	if result.StepsTaken != 10 {
		t.Errorf("StepsTaken = %d, want 10", result.StepsTaken)
	}
	if result.Metrics["count"] != 11 {
		t.Errorf("count metric = %g, want 11 (initial + 10 steps)", result.Metrics["count"])
	}
	if got := len(rec.Samples()); got != 5*3 {
		t.Errorf("recorder kept %d samples, want 15", got)
	}
	if names := rec.Names(); len(names) != 3 || names[1] != "b" {
		t.Errorf("recorder names = %v", names)
	}
	series := rec.Series("c")
	if len(series) != 5 || series[0].Step != 2 || series[4].Step != 10 {
		t.Errorf("series for c = %+v", series)
	}
}

func TestRun_Canceled(t *testing.T) {
	s, err := New(triangle(t), unitConfig())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("StepsTaken = %d after cancel", result.StepsTaken)
	}
}

func TestEnsemble(t *testing.T) {
	var members []*Simulator
	for _, o := range []dynamo.Ordering{dynamo.TwoPhase, dynamo.Sequential} {
		cfg := unitConfig()
		cfg.Ordering = o
		s, err := New(triangle(t), cfg)
		if err != nil {
			t.Fatal(err)
		}
		members = append(members, s)
	}

	results, err := NewEnsemble(members...).Run(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.StepsTaken != 4 || members[i].Steps() != 4 {
			t.Errorf("member %d took %d steps", i, r.StepsTaken)
		}
	}
}

func BenchmarkAdvance(b *testing.B) {
	cfg := unitConfig()
	cfg.Dt = 0.01
	s, err := New(ring(b, 100), cfg)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Advance(); err != nil {
			b.Fatal(err)
		}
	}
}
