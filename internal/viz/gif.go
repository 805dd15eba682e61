package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	charW, charH = 8, 16
	maxFrames    = 1800
)

type gifRecorder struct {
	frames []*image.Paletted
}

func newGIFRecorder() *gifRecorder {
	return &gifRecorder{frames: make([]*image.Paletted, 0)}
}

// Capture rasterizes the canvas dots, keeping each cell's color.
func (g *gifRecorder) Capture(c *Canvas, theme Theme) {
	if len(g.frames) >= maxFrames {
		return
	}
	g.frames = append(g.frames, Rasterize(c, theme))
}

func (g *gifRecorder) Save(path string) error {
	if len(g.frames) == 0 {
		return errors.New("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range g.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 3)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Rasterize draws every set dot of c as a block of pixels. Text cells are
// skipped. The palette holds the theme background, the theme text color and
// up to 254 distinct cell colors; further colors fall back to text.
func Rasterize(c *Canvas, theme Theme) *image.Paletted {
	bg := toColor(theme.Background, color.Black)
	fg := toColor(theme.Text, color.White)
	palette := color.Palette{bg, fg}
	index := map[lipgloss.Color]uint8{}

	imgW, imgH := c.Width*charW, c.Height*charH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), palette)
	dotW, dotH := charW/2, charH/4

	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			if c.text[row][col] {
				continue
			}
			pattern := c.Grid[row][col] - blank
			if pattern == 0 {
				continue
			}

			ci := uint8(1)
			if cc := c.Colors[row][col]; cc != "" {
				i, ok := index[cc]
				if !ok && len(palette) < 256 {
					palette = append(palette, toColor(cc, fg))
					i = uint8(len(palette) - 1)
					index[cc] = i
					ok = true
				}
				if ok {
					ci = i
				}
			}

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&rune(pixelMap[dy][dx]) == 0 {
						continue
					}
					baseX, baseY := col*charW+dx*dotW, row*charH+dy*dotH
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+px, baseY+py, ci)
						}
					}
				}
			}
		}
	}
	img.Palette = palette
	return img
}

func toColor(c lipgloss.Color, fallback color.Color) color.Color {
	cf, err := colorful.Hex(string(c))
	if err != nil {
		return fallback
	}
	r, g, b := cf.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
