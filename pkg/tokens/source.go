// Package tokens supplies positioned text tokens from statement documents.
// A Source abstracts over the upstream extractor (PDF text layer or OCR) so
// the layout engine only ever sees tokens in raster coordinates.
package tokens

import (
	"context"
	"fmt"
	"sort"

	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/layout"
)

// Page holds the tokens and geometry of a single document page.
type Page struct {
	Number int // 1-based
	Width  float64
	Height float64
	Tokens []layout.Token
}

// Source yields page tokens from an underlying document.
type Source interface {
	// PageCount returns the total number of pages.
	PageCount() int

	// Page extracts the tokens of the given 1-based page number.
	Page(ctx context.Context, number int) (Page, error)

	// Close releases resources held by the source.
	Close() error
}

// SliceSource is an in-memory Source backed by pre-extracted pages.
type SliceSource struct {
	Pages []Page
}

// NewSliceSource builds a Source from already-extracted pages.
func NewSliceSource(pages ...Page) *SliceSource {
	return &SliceSource{Pages: pages}
}

// PageCount returns the number of pages.
func (s *SliceSource) PageCount() int {
	return len(s.Pages)
}

// Page returns the stored page for the given 1-based number.
func (s *SliceSource) Page(_ context.Context, number int) (Page, error) {
	if number < 1 || number > len(s.Pages) {
		return Page{}, fmt.Errorf("page number %d out of range [1, %d]", number, len(s.Pages))
	}
	return s.Pages[number-1], nil
}

// Close is a no-op for in-memory sources.
func (s *SliceSource) Close() error {
	return nil
}

// Collect drains every page of a source in order.
func Collect(ctx context.Context, src Source) ([]Page, error) {
	pages := make([]Page, 0, src.PageCount())
	for n := 1; n <= src.PageCount(); n++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		p, err := src.Page(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", n, err)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// fragment is a raw positioned text run before word merging.
type fragment struct {
	text     string
	x0, y0   float64
	x1, y1   float64
	fontSize float64
}

// mergeFragments joins raw text runs into word tokens. Runs sharing a
// baseline are merged when the horizontal gap between them is smaller than
// a fraction of the font size; larger gaps start a new token.
func mergeFragments(frags []fragment, page int) []layout.Token {
	if len(frags) == 0 {
		return nil
	}
	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].y0 != frags[j].y0 {
			return frags[i].y0 < frags[j].y0
		}
		return frags[i].x0 < frags[j].x0
	})

	var out []layout.Token
	cur := frags[0]
	for _, f := range frags[1:] {
		sameLine := absFloat(f.y0-cur.y0) < cur.fontSize*0.5
		gap := f.x0 - cur.x1
		if sameLine && gap >= 0 && gap < joinGap(cur.fontSize) {
			cur.text += f.text
			cur.x1 = f.x1
			if f.y1 > cur.y1 {
				cur.y1 = f.y1
			}
			continue
		}
		out = append(out, fragmentToken(cur, page))
		cur = f
	}
	out = append(out, fragmentToken(cur, page))
	layout.SortTokens(out)
	return out
}

// joinGap is the maximum horizontal gap still considered intra-word.
func joinGap(fontSize float64) float64 {
	if fontSize <= 0 {
		return 1.5
	}
	return fontSize * 0.25
}

func fragmentToken(f fragment, page int) layout.Token {
	return layout.Token{
		Text:       f.text,
		X0:         f.x0,
		Y0:         f.y0,
		X1:         f.x1,
		Y1:         f.y1,
		Page:       page,
		Confidence: 1,
	}
}

// splitWords breaks a single text run into space-separated word fragments,
// apportioning the run width evenly across its characters.
func splitWords(text string, x0, y0, width, fontSize float64) []fragment {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	charWidth := width / float64(len(runes))
	var frags []fragment
	start := -1
	for i := 0; i <= len(runes); i++ {
		atEnd := i == len(runes)
		if !atEnd && runes[i] != ' ' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			frags = append(frags, fragment{
				text:     string(runes[start:i]),
				x0:       x0 + charWidth*float64(start),
				y0:       y0,
				x1:       x0 + charWidth*float64(i),
				y1:       y0 + fontSize,
				fontSize: fontSize,
			})
			start = -1
		}
	}
	return frags
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
