package sim

import "github.com/san-kum/orrery/internal/physics"

// Metric accumulates a scalar over the steps of a run.
type Metric interface {
	Name() string
	Observe(bodies []*physics.Body, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every successful step.
type Observer interface {
	OnStep(bodies []*physics.Body, step int, t float64)
}

// Pair is an unordered pair of distinct body indices with I < J.
type Pair struct {
	I, J int
}

// Pairs returns every distinct unordered pair over n bodies in
// lexicographic order: n*(n-1)/2 entries.
func Pairs(n int) []Pair {
	if n < 2 {
		return nil
	}
	pairs := make([]Pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, Pair{I: i, J: j})
		}
	}
	return pairs
}

// partners expands pairs into, for each body, the ascending indices of the
// bodies it interacts with.
func partners(n int, pairs []Pair) [][]int {
	out := make([][]int, n)
	for i := range out {
		out[i] = make([]int, 0, n-1)
	}
	for _, p := range pairs {
		out[p.I] = append(out[p.I], p.J)
		out[p.J] = append(out[p.J], p.I)
	}
	return out
}

type Result struct {
	StepsTaken  int
	Time        float64
	EnergyDrift float64
	Metrics     map[string]float64
}
