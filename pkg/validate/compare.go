package validate

import (
	"fmt"
	"image"
	"image/color"

	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/layout"
)

// BlockComparator is the default comparison collaborator: it walks both
// images in fixed-size blocks, scores each block by the fraction of pixels
// whose luminance differs beyond a tolerance, and merges adjacent differing
// blocks into regions.
type BlockComparator struct {
	// BlockSize is the edge length of a comparison block in pixels.
	BlockSize int
	// PixelTolerance is the luminance delta below which two pixels match.
	PixelTolerance uint8
	// MinFraction is the differing-pixel fraction above which a block is
	// reported.
	MinFraction float64
}

// NewBlockComparator builds a comparator with the default tuning.
func NewBlockComparator() *BlockComparator {
	return &BlockComparator{BlockSize: 16, PixelTolerance: 32, MinFraction: 0.02}
}

// Compare implements Comparator. Both images must share the same bounds.
func (c *BlockComparator) Compare(original, reconstruction image.Image) ([]DiffRegion, error) {
	ob := original.Bounds()
	rb := reconstruction.Bounds()
	if ob.Dx() != rb.Dx() || ob.Dy() != rb.Dy() {
		return nil, fmt.Errorf("page sizes differ: %dx%d vs %dx%d", ob.Dx(), ob.Dy(), rb.Dx(), rb.Dy())
	}

	size := c.BlockSize
	cols := (ob.Dx() + size - 1) / size
	rows := (ob.Dy() + size - 1) / size
	scores := make([][]float64, rows)

	for by := 0; by < rows; by++ {
		scores[by] = make([]float64, cols)
		for bx := 0; bx < cols; bx++ {
			diff, total := 0, 0
			for y := by * size; y < (by+1)*size && y < ob.Dy(); y++ {
				for x := bx * size; x < (bx+1)*size && x < ob.Dx(); x++ {
					total++
					lo := luminance(original.At(ob.Min.X+x, ob.Min.Y+y))
					lr := luminance(reconstruction.At(rb.Min.X+x, rb.Min.Y+y))
					if absDelta(lo, lr) > c.PixelTolerance {
						diff++
					}
				}
			}
			if total > 0 {
				scores[by][bx] = float64(diff) / float64(total)
			}
		}
	}

	return c.mergeBlocks(scores, size), nil
}

// mergeBlocks joins horizontal runs of differing blocks, then grows each run
// downward over vertically adjacent overlapping runs.
func (c *BlockComparator) mergeBlocks(scores [][]float64, size int) []DiffRegion {
	type run struct {
		row, x0, x1 int
		score       float64
		merged      bool
	}
	var runs []run
	for by := range scores {
		bx := 0
		for bx < len(scores[by]) {
			if scores[by][bx] <= c.MinFraction {
				bx++
				continue
			}
			start := bx
			peak := 0.0
			for bx < len(scores[by]) && scores[by][bx] > c.MinFraction {
				if scores[by][bx] > peak {
					peak = scores[by][bx]
				}
				bx++
			}
			runs = append(runs, run{row: by, x0: start, x1: bx, score: peak})
		}
	}

	var regions []DiffRegion
	for i := range runs {
		if runs[i].merged {
			continue
		}
		box := layout.BoundingBox{
			X0: float64(runs[i].x0 * size),
			Y0: float64(runs[i].row * size),
			X1: float64(runs[i].x1 * size),
			Y1: float64((runs[i].row + 1) * size),
		}
		score := runs[i].score
		row := runs[i].row
		for j := i + 1; j < len(runs); j++ {
			if runs[j].merged || runs[j].row != row+1 {
				continue
			}
			if float64(runs[j].x1*size) <= box.X0 || float64(runs[j].x0*size) >= box.X1 {
				continue
			}
			runs[j].merged = true
			row = runs[j].row
			if x := float64(runs[j].x0 * size); x < box.X0 {
				box.X0 = x
			}
			if x := float64(runs[j].x1 * size); x > box.X1 {
				box.X1 = x
			}
			box.Y1 = float64((row + 1) * size)
			if runs[j].score > score {
				score = runs[j].score
			}
		}
		regions = append(regions, DiffRegion{Box: box, Score: score})
	}
	return regions
}

func luminance(c color.Color) uint8 {
	r, g, b, _ := c.RGBA()
	// Integer Rec. 601 weights over 16-bit channels.
	return uint8((299*r + 587*g + 114*b) / 1000 >> 8)
}

func absDelta(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
