package viz

import (
	"github.com/san-kum/orrery/internal/physics"
)

// SceneOptions controls DrawScene.
type SceneOptions struct {
	Theme  Theme
	Labels bool
	// MaxTrail limits how many trail points are drawn per body; 0 draws all.
	MaxTrail int
}

// DrawScene draws trails, bodies and distance labels. A trail is drawn as
// connected segments once it holds more than two points. Labels go to the
// right of every non-anchor body.
func DrawScene(c *Canvas, vp Viewport, bodies []*physics.Body, opts SceneOptions) {
	w, h := c.PixelSize()
	vp.Width, vp.Height = w, h

	for _, b := range bodies {
		trail := b.Trail()
		if len(trail) <= 2 {
			continue
		}
		if opts.MaxTrail > 0 && len(trail) > opts.MaxTrail {
			trail = trail[len(trail)-opts.MaxTrail:]
		}

		c.Pen = opts.Theme.TrailColor(b.Color())
		px, py := vp.ToScreen(trail[0])
		for _, p := range trail[1:] {
			x, y := vp.ToScreen(p)
			// Segments far off screen would make Bresenham walk for ages.
			if vp.Contains(px, py, w) && vp.Contains(x, y, w) {
				c.DrawLine(px, py, x, y)
			}
			px, py = x, y
		}
	}

	for _, b := range bodies {
		x, y := vp.ToScreen(b.Position())
		if !vp.Contains(x, y, 0) {
			continue
		}
		c.Pen = opts.Theme.BodyColor(b.Color())
		r := vp.Radius(b.Radius())
		c.FillCircle(x, y, r)

		if opts.Labels && !b.IsAnchor() {
			col := (x+r)/2 + 2
			c.Text(col, y/4, Label(b), opts.Theme.Muted)
		}
	}
	c.Pen = ""
}
