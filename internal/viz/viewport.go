package viz

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/physics"
)

// ReferenceSize is the window edge, in pixels, that screen scales and body
// radii in system files are written for.
const ReferenceSize = 800

// Viewport maps physical coordinates to pixels:
// screen = (physical - Center) * Scale + size/2.
type Viewport struct {
	Scale         float64 // pixels per meter
	Width, Height int
	Center        r2.Vec
}

// NewViewport fits a scale written for a ReferenceSize window to a
// w by h pixel surface.
func NewViewport(screenScale float64, w, h int) Viewport {
	return Viewport{
		Scale:  screenScale * float64(min(w, h)) / ReferenceSize,
		Width:  w,
		Height: h,
	}
}

func (v Viewport) ToScreen(p r2.Vec) (int, int) {
	x := (p.X-v.Center.X)*v.Scale + float64(v.Width)/2
	y := (p.Y-v.Center.Y)*v.Scale + float64(v.Height)/2
	return int(math.Round(x)), int(math.Round(y))
}

// Radius converts a display radius written for a ReferenceSize window.
func (v Viewport) Radius(r float64) int {
	return int(math.Round(r * float64(min(v.Width, v.Height)) / ReferenceSize))
}

// Contains reports whether (x, y) lies within margin pixels of the surface.
func (v Viewport) Contains(x, y, margin int) bool {
	return x >= -margin && y >= -margin && x < v.Width+margin && y < v.Height+margin
}

func (v Viewport) Zoom(factor float64) Viewport {
	v.Scale *= factor
	return v
}

// FitScale returns the largest scale, in pixels per meter, that keeps every
// body inside a w by h surface centered on the origin, leaving margin as a
// fraction of each half-extent.
func FitScale(bodies []*physics.Body, w, h int, margin float64) float64 {
	maxX, maxY := 0.0, 0.0
	for _, b := range bodies {
		p := b.Position()
		maxX = math.Max(maxX, math.Abs(p.X))
		maxY = math.Max(maxY, math.Abs(p.Y))
	}
	if maxX == 0 && maxY == 0 {
		return 1
	}

	scale := math.Inf(1)
	if maxX > 0 {
		scale = math.Min(scale, float64(w)/2/maxX)
	}
	if maxY > 0 {
		scale = math.Min(scale, float64(h)/2/maxY)
	}
	return scale * (1 - margin)
}

// Label is the distance caption shown next to a non-anchor body, in
// kilometers rounded to one decimal.
func Label(b *physics.Body) string {
	return fmt.Sprintf("%.1fkm", b.DistanceToAnchor()/1000)
}
