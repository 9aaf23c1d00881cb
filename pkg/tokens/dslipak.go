package tokens

import (
	"context"
	"fmt"

	gopdf "github.com/dslipak/pdf"
)

// DslipakSource extracts page tokens using the dslipak/pdf library. It is
// the fallback backend for files the preferred reader cannot parse. The
// library does not expose MediaBox, so page sizes come from a geometry pass
// or default to US Letter.
type DslipakSource struct {
	reader *gopdf.Reader
	sizes  []Size
}

// OpenWithDslipak opens a PDF file using the dslipak/pdf library.
func OpenWithDslipak(filepath string, sizes []Size) (*DslipakSource, error) {
	r, err := gopdf.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with dslipak: %w", err)
	}
	return &DslipakSource{reader: r, sizes: sizes}, nil
}

// PageCount returns the total number of pages.
func (s *DslipakSource) PageCount() int {
	return s.reader.NumPage()
}

// Page extracts the tokens of the given 1-based page number.
func (s *DslipakSource) Page(ctx context.Context, number int) (Page, error) {
	select {
	case <-ctx.Done():
		return Page{}, ctx.Err()
	default:
	}
	if number < 1 || number > s.reader.NumPage() {
		return Page{}, fmt.Errorf("page number %d out of range [1, %d]", number, s.reader.NumPage())
	}

	page := s.reader.Page(number)
	width, height := s.pageSize(number)

	var frags []fragment
	for _, text := range page.Content().Text {
		fontSize := text.FontSize
		if fontSize <= 0 {
			fontSize = 10
		}
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

// Close releases the reader.
func (s *DslipakSource) Close() error {
	s.reader = nil
	return nil
}

func (s *DslipakSource) pageSize(number int) (float64, float64) {
	if number-1 < len(s.sizes) {
		sz := s.sizes[number-1]
		if sz.Width > 0 && sz.Height > 0 {
			return sz.Width, sz.Height
		}
	}
	return letterWidth, letterHeight
}

var _ Source = (*DslipakSource)(nil)
