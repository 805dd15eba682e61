package export

import (
	"fmt"
	"html"
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/physics"
	"github.com/san-kum/orrery/internal/viz"
)

const background = "#0a0a0a"

// SVGOptions controls SceneToSVG.
type SVGOptions struct {
	// Background fill; empty uses a near-black default.
	Background string
	// LabelColor of the distance captions.
	LabelColor string
	FontSize   int
}

// SceneToSVG draws a body set the way the window renderer does: each trail
// with more than two points as a polyline, every body as a filled circle of
// its display radius, and a distance label beside every non-anchor body.
func SceneToSVG(bodies []*physics.Body, vp viz.Viewport, opts SVGOptions) string {
	if opts.Background == "" {
		opts.Background = background
	}
	if opts.LabelColor == "" {
		opts.LabelColor = "#ffffff"
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 16
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, vp.Width, vp.Height, vp.Width, vp.Height, opts.Background))

	for _, b := range bodies {
		trail := b.Trail()
		if len(trail) <= 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<polyline class="trail" data-body="%s" fill="none" stroke="%s" stroke-width="2" points="`,
			html.EscapeString(b.Name()), hex(b.Color())))
		for i, p := range trail {
			if i > 0 {
				sb.WriteByte(' ')
			}
			x, y := vp.ToScreen(p)
			sb.WriteString(fmt.Sprintf("%d,%d", x, y))
		}
		sb.WriteString("\"/>\n")
	}

	for _, b := range bodies {
		x, y := vp.ToScreen(b.Position())
		r := vp.Radius(b.Radius())
		sb.WriteString(fmt.Sprintf(`<circle class="body" data-body="%s" cx="%d" cy="%d" r="%d" fill="%s"/>
`, html.EscapeString(b.Name()), x, y, r, hex(b.Color())))
	}

	for _, b := range bodies {
		if b.IsAnchor() {
			continue
		}
		x, y := vp.ToScreen(b.Position())
		r := vp.Radius(b.Radius())
		sb.WriteString(fmt.Sprintf(`<text class="label" x="%d" y="%d" fill="%s" font-family="monospace" font-size="%d">%s</text>
`, x+r+4, y+opts.FontSize/3, opts.LabelColor, opts.FontSize, html.EscapeString(viz.Label(b))))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG format, keeping cell colors.
// Text cells are dropped.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="#00ff00">
`, width, height, width, height, background))

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 || r > 0x28ff {
				continue
			}
			pattern := int(r - 0x2800)
			fill := ""
			if c := canvas.Colors[row][col]; c != "" {
				fill = fmt.Sprintf(` fill="%s"`, html.EscapeString(string(c)))
			}

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"%s/>
`, cx, cy, dotRadius, fill))
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws a path fitted into width by height with equal x and
// y scale, so orbits keep their shape.
func TrajectoryToSVG(points []r2.Vec, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	// 10% padding on each side.
	scale := math.Min(float64(width), float64(height)) / (span * 1.2)
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, html.EscapeString(strokeColor)))

	for i, p := range points {
		x := (p.X-cx)*scale + float64(width)/2
		y := (p.Y-cy)*scale + float64(height)/2

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
