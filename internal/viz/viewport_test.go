package viz

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
)

func body(t *testing.T, p physics.BodyParams) *physics.Body {
	t.Helper()
	if p.Mass == 0 {
		p.Mass = 1
	}
	if p.Color == (color.RGBA{}) {
		p.Color = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	}
	b, err := physics.NewBody(p)
	require.NoError(t, err)
	return b
}

func TestViewportReferenceMapping(t *testing.T) {
	// 250 pixels per AU in an 800 pixel window puts earth 250 pixels off center.
	vp := NewViewport(250/dynamo.AU, ReferenceSize, ReferenceSize)

	x, y := vp.ToScreen(r2.Vec{})
	assert.Equal(t, 400, x)
	assert.Equal(t, 400, y)

	x, y = vp.ToScreen(r2.Vec{X: -dynamo.AU})
	assert.Equal(t, 150, x)
	assert.Equal(t, 400, y)

	assert.Equal(t, 16, vp.Radius(16))
}

func TestViewportScalesToSurface(t *testing.T) {
	vp := NewViewport(250/dynamo.AU, 200, 100)
	x, y := vp.ToScreen(r2.Vec{X: dynamo.AU, Y: dynamo.AU})
	assert.Equal(t, 100+31, x)
	assert.Equal(t, 50+31, y)
	assert.Equal(t, 4, vp.Radius(30))
}

func TestViewportCenterAndZoom(t *testing.T) {
	vp := Viewport{Scale: 1, Width: 100, Height: 100, Center: r2.Vec{X: 10, Y: -10}}
	x, y := vp.ToScreen(r2.Vec{X: 10, Y: -10})
	assert.Equal(t, 50, x)
	assert.Equal(t, 50, y)

	x, _ = vp.Zoom(2).ToScreen(r2.Vec{X: 20, Y: -10})
	assert.Equal(t, 70, x)

	assert.True(t, vp.Contains(-5, 50, 10))
	assert.False(t, vp.Contains(-5, 50, 0))
}

func TestFitScale(t *testing.T) {
	bodies := []*physics.Body{
		body(t, physics.BodyParams{Name: "a", Position: r2.Vec{X: 100}}),
		body(t, physics.BodyParams{Name: "b", Position: r2.Vec{Y: -10}}),
	}
	assert.InDelta(t, 0.9, FitScale(bodies, 200, 200, 0.1), 1e-12)
	assert.InDelta(t, 0.5, FitScale(bodies, 200, 10, 0), 1e-12, "height binds")

	still := []*physics.Body{body(t, physics.BodyParams{Name: "c"})}
	assert.Equal(t, 1.0, FitScale(still, 10, 10, 0))
}

func TestLabel(t *testing.T) {
	b := body(t, physics.BodyParams{Name: "earth"})
	b.SetDistanceToAnchor(149_598_023_456)
	assert.Equal(t, "149598023.5km", Label(b))

	b.SetDistanceToAnchor(0)
	assert.Equal(t, "0.0km", Label(b))
}
