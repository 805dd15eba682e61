package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
	"github.com/san-kum/orrery/internal/sim"
)

func newBody(name string, mass float64, pos, vel r2.Vec, anchor bool) *physics.Body {
	b, err := physics.NewBody(physics.BodyParams{Name: name, Mass: mass, Position: pos, Velocity: vel, Anchor: anchor})
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return b
}

var _ = Describe("Simulator", func() {
	var cfg dynamo.Config

	BeforeEach(func() {
		cfg = dynamo.DefaultConfig()
		cfg.G = 1
		cfg.Dt = 1
	})

	Context("two bodies at rest", func() {
		var light, heavy *physics.Body
		var s *sim.Simulator

		BeforeEach(func() {
			light = newBody("light", 10, r2.Vec{X: -3, Y: 4}, r2.Vec{}, false)
			heavy = newBody("heavy", 1000, r2.Vec{X: 3, Y: -4}, r2.Vec{}, true)

			var err error
			s, err = sim.New([]*physics.Body{light, heavy}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Advance()).To(Succeed())
		})

		It("pulls each body toward the other", func() {
			toHeavy := r2.Unit(r2.Vec{X: 6, Y: -8})
			v := light.Velocity()
			Expect(r2.Norm(v)).To(BeNumerically(">", 0))
			Expect(r2.Unit(v).X).To(BeNumerically("~", toHeavy.X, 1e-9))
			Expect(r2.Unit(v).Y).To(BeNumerically("~", toHeavy.Y, 1e-9))

			back := r2.Unit(heavy.Velocity())
			Expect(back.X).To(BeNumerically("~", -toHeavy.X, 1e-9))
			Expect(back.Y).To(BeNumerically("~", -toHeavy.Y, 1e-9))
		})

		It("applies equal and opposite forces", func() {
			// m·Δv/dt recovers the force each body felt during the step.
			f1 := r2.Scale(light.Mass()/cfg.Dt, light.Velocity())
			f2 := r2.Scale(heavy.Mass()/cfg.Dt, heavy.Velocity())

			want := cfg.G * light.Mass() * heavy.Mass() / 100
			Expect(r2.Norm(f1)).To(BeNumerically("~", want, want*1e-9))
			Expect(r2.Norm(f2)).To(BeNumerically("~", want, want*1e-9))
			Expect(r2.Norm(r2.Add(f1, f2))).To(BeNumerically("<", want*1e-9))
		})

		It("moves each body by its new velocity", func() {
			Expect(light.Position().X).To(BeNumerically("~", -3+light.Velocity().X*cfg.Dt, 1e-12))
			Expect(light.Position().Y).To(BeNumerically("~", 4+light.Velocity().Y*cfg.Dt, 1e-12))
		})

		It("records the distance to the anchor at the time of the step", func() {
			Expect(light.DistanceToAnchor()).To(Equal(10.0))
			Expect(heavy.DistanceToAnchor()).To(BeZero())
		})

		It("appends exactly one trail point per step", func() {
			for i := 0; i < 4; i++ {
				Expect(s.Advance()).To(Succeed())
			}
			Expect(light.Trail()).To(HaveLen(5))
			Expect(heavy.Trail()).To(HaveLen(5))
			Expect(light.Trail()[4]).To(Equal(light.Position()))
		})
	})

	Context("a light body on a circular orbit", func() {
		const steps = 20000

		var planet *physics.Body
		var s *sim.Simulator
		var start r2.Vec

		BeforeEach(func() {
			star := newBody("star", 1, r2.Vec{}, r2.Vec{}, true)
			v := physics.CircularVelocity(1, 1, 1)
			start = r2.Vec{X: 1}
			planet = newBody("planet", 1e-10, start, r2.Vec{Y: v}, false)

			cfg.Dt = physics.OrbitalPeriod(1, 1, 1) / steps

			var err error
			s, err = sim.New([]*physics.Body{star, planet}, cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns near its starting point after one period", func() {
			result, err := s.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.StepsTaken).To(Equal(steps))

			Expect(r2.Norm(r2.Sub(planet.Position(), start))).To(BeNumerically("<", 1e-2))
			Expect(planet.DistanceToAnchor()).To(BeNumerically("~", 1, 1e-2))
		})

		It("keeps energy bounded", func() {
			result, err := s.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.EnergyDrift).To(BeNumerically("<", 1e-2))
		})

		It("never moves the trail off the current position", func() {
			for i := 0; i < 100; i++ {
				Expect(s.Advance()).To(Succeed())
				trail := planet.Trail()
				Expect(trail[len(trail)-1]).To(Equal(planet.Position()))
			}
			Expect(math.IsNaN(planet.Position().X)).To(BeFalse())
		})
	})

	Context("coincident bodies", func() {
		It("fails the step under the reject policy", func() {
			a := newBody("a", 1, r2.Vec{X: 1}, r2.Vec{}, false)
			b := newBody("b", 1, r2.Vec{X: 1}, r2.Vec{}, false)
			s, err := sim.New([]*physics.Body{a, b}, cfg)
			Expect(err).NotTo(HaveOccurred())

			err = s.Advance()
			Expect(err).To(MatchError(dynamo.ErrDegenerateConfiguration))
			Expect(a.Trail()).To(BeEmpty())
		})

		It("bounds the force under the clamp policy", func() {
			cfg.Degenerate = dynamo.Clamp
			cfg.MinDistance = 1
			a := newBody("a", 1, r2.Vec{}, r2.Vec{}, false)
			b := newBody("b", 1, r2.Vec{X: 1e-6}, r2.Vec{}, false)
			s, err := sim.New([]*physics.Body{a, b}, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Advance()).To(Succeed())
			Expect(a.Velocity().X).To(BeNumerically("~", 1, 1e-12))
		})
	})

	It("rejects bodies with non-positive mass at construction", func() {
		_, err := physics.NewBody(physics.BodyParams{Name: "ghost", Mass: 0})
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
	})
})
