package tokens

import (
	"context"
	"fmt"
	"io"

	lpdf "github.com/ledongthuc/pdf"
)

// LedongthucSource extracts page tokens from a PDF text layer using the
// ledongthuc/pdf library. This is the preferred backend: it reports per-run
// widths, which makes word boxes accurate enough for column assignment.
type LedongthucSource struct {
	file   io.Closer
	reader *lpdf.Reader
	sizes  []Size
}

// OpenWithLedongthuc opens a PDF file using the ledongthuc/pdf library.
// Page sizes may be supplied from a separate geometry pass; pass nil to fall
// back to each page's MediaBox.
func OpenWithLedongthuc(filepath string, sizes []Size) (*LedongthucSource, error) {
	f, r, err := lpdf.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with ledongthuc: %w", err)
	}
	return &LedongthucSource{file: f, reader: r, sizes: sizes}, nil
}

// PageCount returns the total number of pages.
func (s *LedongthucSource) PageCount() int {
	return s.reader.NumPage()
}

// Page extracts the tokens of the given 1-based page number, converting from
// PDF bottom-left coordinates to raster top-left coordinates.
func (s *LedongthucSource) Page(ctx context.Context, number int) (Page, error) {
	select {
	case <-ctx.Done():
		return Page{}, ctx.Err()
	default:
	}
	if number < 1 || number > s.reader.NumPage() {
		return Page{}, fmt.Errorf("page number %d out of range [1, %d]", number, s.reader.NumPage())
	}

	page := s.reader.Page(number)
	width, height := s.pageSize(number, page)

	var frags []fragment
	for _, text := range page.Content().Text {
		fontSize := text.FontSize
		if fontSize <= 0 {
			fontSize = 10
		}
		// text.Y is the baseline in PDF coordinates; the glyph top sits
		// roughly 80% of the font size above it.
		yTop := text.Y + fontSize*0.8
		y0 := height - yTop
		frags = append(frags, splitWords(text.S, text.X, y0, text.W, fontSize)...)
	}

	return Page{
		Number: number,
		Width:  width,
		Height: height,
		Tokens: mergeFragments(frags, number),
	}, nil
}

// Close releases the underlying file handle.
func (s *LedongthucSource) Close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func (s *LedongthucSource) pageSize(number int, page lpdf.Page) (float64, float64) {
	if number-1 < len(s.sizes) {
		sz := s.sizes[number-1]
		if sz.Width > 0 && sz.Height > 0 {
			return sz.Width, sz.Height
		}
	}

	width, height := letterWidth, letterHeight
	mediaBox := page.V.Key("MediaBox")
	if mediaBox.Kind() == lpdf.Array && mediaBox.Len() == 4 {
		// MediaBox is [x0, y0, x1, y1]
		x0 := mediaBox.Index(0).Float64()
		y0 := mediaBox.Index(1).Float64()
		x1 := mediaBox.Index(2).Float64()
		y1 := mediaBox.Index(3).Float64()
		if x1 > x0 && y1 > y0 {
			width = x1 - x0
			height = y1 - y0
		}
	}
	return width, height
}

var _ Source = (*LedongthucSource)(nil)
