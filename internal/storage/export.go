package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/orrery/internal/sim"
)

type ExportData struct {
	RunMetadata
	Series map[string]BodySeries `json:"series"`
}

// BodySeries holds one body's samples as parallel columns.
type BodySeries struct {
	Steps    []int     `json:"steps"`
	Times    []float64 `json:"times"`
	X        []float64 `json:"x"`
	Y        []float64 `json:"y"`
	VX       []float64 `json:"vx"`
	VY       []float64 `json:"vy"`
	Distance []float64 `json:"distance"`
}

// ExportJSON writes the run metadata and its samples, grouped per body.
func ExportJSON(w io.Writer, meta *RunMetadata, samples []sim.Sample) error {
	data := ExportData{
		RunMetadata: *meta,
		Series:      make(map[string]BodySeries),
	}

	for _, smp := range samples {
		s := data.Series[smp.Body]
		s.Steps = append(s.Steps, smp.Step)
		s.Times = append(s.Times, smp.Time)
		s.X = append(s.X, smp.X)
		s.Y = append(s.Y, smp.Y)
		s.VX = append(s.VX, smp.VX)
		s.VY = append(s.VY, smp.VY)
		s.Distance = append(s.Distance, smp.Distance)
		data.Series[smp.Body] = s
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
