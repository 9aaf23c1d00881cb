package tokens

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Default page size when a document does not declare one (US Letter).
const (
	letterWidth  = 612.0
	letterHeight = 792.0
)

// Size is the geometry of a single page in PDF points.
type Size struct {
	Width  float64
	Height float64
}

// PageSizes reads the per-page MediaBox geometry of a PDF using pdfcpu.
// The result feeds the text-layer backends and the validator's render
// canvas, which both need raster dimensions.
func PageSizes(filepath string) ([]Size, error) {
	ctx, err := api.ReadContextFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	sizes := make([]Size, ctx.PageCount)
	for n := 1; n <= ctx.PageCount; n++ {
		sizes[n-1] = Size{Width: letterWidth, Height: letterHeight}
		_, _, attrs, err := ctx.PageDict(n, false)
		if err != nil {
			continue
		}
		if attrs != nil && attrs.MediaBox != nil {
			w := attrs.MediaBox.Width()
			h := attrs.MediaBox.Height()
			if w > 0 && h > 0 {
				sizes[n-1] = Size{Width: w, Height: h}
			}
		}
	}
	return sizes, nil
}

// ValidateFile checks that a PDF is structurally sound before extraction.
func ValidateFile(filepath string) error {
	ctx, err := api.ReadContextFile(filepath)
	if err != nil {
		return fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return fmt.Errorf("invalid PDF: %w", err)
	}
	return nil
}
