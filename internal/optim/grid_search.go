package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/sim"
)

// Trial is one evaluated parameter combination.
type Trial struct {
	Params map[string]float64
	Value  float64
	Steps  int
	Err    error
}

// BuildFunc makes a fresh simulator for one combination of parameters and
// says how many steps to run it for.
type BuildFunc func(params map[string]float64) (s *sim.Simulator, steps int, err error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d parameters but %d ranges", dynamo.ErrInvalidParameter, len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: no values for %q", dynamo.ErrInvalidParameter, params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs every combination and returns all trials in
// grid order plus the one with the smallest metric. The metric is read from
// the run's metrics, except "energy_drift" which falls back to the result's
// own drift. Failed trials are kept with Err set and never win.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc, metricName string) ([]Trial, *Trial, error) {
	var trials []Trial
	g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, &trials)
	if err := ctx.Err(); err != nil {
		return trials, nil, err
	}

	var best *Trial
	for i := range trials {
		t := &trials[i]
		if t.Err != nil || math.IsNaN(t.Value) {
			continue
		}
		if best == nil || t.Value < best.Value {
			best = t
		}
	}
	return trials, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build BuildFunc,
	metricName string,
	trials *[]Trial,
) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.paramNames) {
		*trials = append(*trials, evaluate(ctx, current, build, metricName))
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, build, metricName, trials)
	}
}

func evaluate(ctx context.Context, params map[string]float64, build BuildFunc, metricName string) Trial {
	trial := Trial{Params: params, Value: math.NaN()}

	s, steps, err := build(params)
	if err != nil {
		trial.Err = err
		return trial
	}

	result, err := s.Run(ctx, steps)
	if result != nil {
		trial.Steps = result.StepsTaken
	}
	if err != nil {
		trial.Err = err
		return trial
	}

	if v, ok := result.Metrics[metricName]; ok {
		trial.Value = v
	} else if metricName == "energy_drift" {
		trial.Value = result.EnergyDrift
	} else {
		trial.Err = fmt.Errorf("%w: run has no metric %q", dynamo.ErrInvalidParameter, metricName)
	}
	return trial
}
