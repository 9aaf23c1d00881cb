package validate

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RasterRenderer is the default rendering collaborator: it draws field text
// into a white page-sized canvas with a fixed-width bitmap face, wrapping
// long values onto additional lines inside their box.
type RasterRenderer struct {
	face font.Face
}

// NewRasterRenderer builds a renderer with the built-in 7x13 face.
func NewRasterRenderer() *RasterRenderer {
	return &RasterRenderer{face: basicfont.Face7x13}
}

// RenderPage implements Renderer.
func (r *RasterRenderer) RenderPage(width, height float64, placements []Placement) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(width)), int(math.Ceil(height))))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: r.face,
	}
	metrics := r.face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()

	for _, p := range placements {
		lines := wrapText(drawer, p.Text, p.Box.Width())
		y := int(p.Box.Y0) + ascent
		for _, line := range lines {
			drawer.Dot = fixed.P(int(p.Box.X0), y)
			drawer.DrawString(line)
			y += lineHeight
		}
	}
	return img, nil
}

// wrapText breaks text into lines no wider than maxWidth, splitting on
// spaces. A single word wider than the box still gets its own line rather
// than being dropped.
func wrapText(drawer *font.Drawer, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	limit := fixed.I(int(maxWidth))
	if limit <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if drawer.MeasureString(candidate) > limit {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}
