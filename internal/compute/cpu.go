package compute

import (
	"fmt"
	"math"
	"runtime"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
)

// serialLimit is the set size below which the third-law serial loop runs.
const serialLimit = 16

// CPUBackend sums pairwise forces in vector form, F = G m_i m_j r / |r|³,
// with optional Plummer softening.
type CPUBackend struct {
	Workers   int
	Softening float64
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{
		Workers: runtime.NumCPU(),
	}
}

func (c *CPUBackend) Name() string { return "pairwise" }

func (c *CPUBackend) Forces(bodies []*physics.Body, g float64) ([]r2.Vec, error) {
	n := len(bodies)
	pos := make([]r2.Vec, n)
	for i, b := range bodies {
		pos[i] = b.Position()
	}
	forces := make([]r2.Vec, n)

	var err error
	if n < serialLimit || c.Workers == 1 {
		err = c.forcesSerial(bodies, pos, g, forces)
	} else {
		err = c.forcesParallel(bodies, pos, g, forces)
	}
	if err != nil {
		return nil, err
	}
	return forces, nil
}

func (c *CPUBackend) forcesSerial(bodies []*physics.Body, pos []r2.Vec, g float64, forces []r2.Vec) error {
	eps2 := c.Softening * c.Softening

	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			r := r2.Sub(pos[j], pos[i])
			d2 := r2.Norm2(r) + eps2
			if d2 == 0 {
				return coincident(bodies[i], bodies[j])
			}

			rInv := 1.0 / math.Sqrt(d2)
			f := r2.Scale(g*bodies[i].Mass()*bodies[j].Mass()*rInv*rInv*rInv, r)
			forces[i] = r2.Add(forces[i], f)
			forces[j] = r2.Sub(forces[j], f)
		}
	}
	return nil
}

// forcesParallel gives each worker a block of rows; row i only writes
// forces[i], so no reduction is needed.
func (c *CPUBackend) forcesParallel(bodies []*physics.Body, pos []r2.Vec, g float64, forces []r2.Vec) error {
	n := len(bodies)
	eps2 := c.Softening * c.Softening
	errs := make([]error, n)

	dynamo.ParallelFor(n, 1, c.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			var sum r2.Vec
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}

				r := r2.Sub(pos[j], pos[i])
				d2 := r2.Norm2(r) + eps2
				if d2 == 0 {
					errs[i] = coincident(bodies[i], bodies[j])
					break
				}

				rInv := 1.0 / math.Sqrt(d2)
				sum = r2.Add(sum, r2.Scale(g*bodies[j].Mass()*rInv*rInv*rInv, r))
			}
			forces[i] = r2.Scale(bodies[i].Mass(), sum)
		}
	})

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func coincident(a, b *physics.Body) error {
	return fmt.Errorf("%w: %q and %q coincide", dynamo.ErrDegenerateConfiguration, a.Name(), b.Name())
}
