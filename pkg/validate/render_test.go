package validate_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/layout"
	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/validate"
)

func TestRasterRendererCanvasSize(t *testing.T) {
	r := validate.NewRasterRenderer()

	img, err := r.RenderPage(612.3, 791.7, nil)
	require.NoError(t, err)
	assert.Equal(t, 613, img.Bounds().Dx())
	assert.Equal(t, 792, img.Bounds().Dy())
}

func TestRasterRendererDrawsText(t *testing.T) {
	r := validate.NewRasterRenderer()

	img, err := r.RenderPage(200, 100, []validate.Placement{
		{Text: "HELLO", Box: layout.BoundingBox{X0: 10, Y0: 20, X1: 150, Y1: 35}},
	})
	require.NoError(t, err)

	assert.True(t, hasInk(img), "rendered text leaves non-white pixels")
}

func TestRasterRendererEmptyPageIsWhite(t *testing.T) {
	r := validate.NewRasterRenderer()

	img, err := r.RenderPage(50, 50, nil)
	require.NoError(t, err)
	assert.False(t, hasInk(img))
}

func TestRasterRendererWrapsLongText(t *testing.T) {
	r := validate.NewRasterRenderer()

	// A narrow box forces wrapping; drawn lines must extend below the box
	// top by more than one line height.
	img, err := r.RenderPage(200, 200, []validate.Placement{
		{Text: "AAAA BBBB CCCC DDDD EEEE FFFF", Box: layout.BoundingBox{X0: 10, Y0: 10, X1: 60, Y1: 22}},
	})
	require.NoError(t, err)

	inkBelow := false
	b := img.Bounds()
	for y := 40; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r8, g8, b8, _ := img.At(x, y).RGBA()
			if r8 < 0xffff || g8 < 0xffff || b8 < 0xffff {
				inkBelow = true
			}
		}
	}
	assert.True(t, inkBelow, "wrapped lines continue below the first line")
}

func hasInk(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r < 0xffff || g < 0xffff || bl < 0xffff {
				return true
			}
		}
	}
	return false
}
