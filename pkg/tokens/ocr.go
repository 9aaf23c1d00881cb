package tokens

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/layout"
)

// OCRSource recognizes word tokens from scanned page images using a
// Tesseract client. Word confidence flows through to the tokens so
// downstream stages can weigh low-quality recognitions.
type OCRSource struct {
	images        []image.Image
	languages     []string
	dpi           int
	clientFactory func() *gosseract.Client
}

// OCROption configures an OCRSource.
type OCROption func(*OCRSource)

// WithLanguages sets the recognition languages (e.g. "spa", "eng").
func WithLanguages(langs ...string) OCROption {
	return func(s *OCRSource) {
		s.languages = langs
	}
}

// WithDPI hints the scan resolution to the recognizer.
func WithDPI(dpi int) OCROption {
	return func(s *OCRSource) {
		s.dpi = dpi
	}
}

// NewOCRSource builds a Source over pre-rasterized page images.
func NewOCRSource(images []image.Image, opts ...OCROption) *OCRSource {
	s := &OCRSource{
		images:        images,
		clientFactory: gosseract.NewClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PageCount returns the number of page images.
func (s *OCRSource) PageCount() int {
	return len(s.images)
}

// Page recognizes the tokens of the given 1-based page number.
func (s *OCRSource) Page(ctx context.Context, number int) (Page, error) {
	select {
	case <-ctx.Done():
		return Page{}, ctx.Err()
	default:
	}
	if number < 1 || number > len(s.images) {
		return Page{}, fmt.Errorf("page number %d out of range [1, %d]", number, len(s.images))
	}

	img := s.images[number-1]
	bounds := img.Bounds()

	c := s.clientFactory()
	defer c.Close()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Page{}, fmt.Errorf("encode page image: %w", err)
	}
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return Page{}, fmt.Errorf("set image: %w", err)
	}
	if len(s.languages) > 0 {
		if err := c.SetLanguage(s.languages...); err != nil {
			return Page{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if s.dpi > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(s.dpi)); err != nil {
			return Page{}, fmt.Errorf("set dpi: %w", err)
		}
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Page{}, fmt.Errorf("recognize words: %w", err)
	}

	toks := make([]layout.Token, 0, len(boxes))
	for _, b := range boxes {
		if b.Word == "" {
			continue
		}
		toks = append(toks, layout.Token{
			Text:       b.Word,
			X0:         float64(b.Box.Min.X),
			Y0:         float64(b.Box.Min.Y),
			X1:         float64(b.Box.Max.X),
			Y1:         float64(b.Box.Max.Y),
			Page:       number,
			Confidence: b.Confidence / 100.0,
		})
	}
	layout.SortTokens(toks)

	return Page{
		Number: number,
		Width:  float64(bounds.Dx()),
		Height: float64(bounds.Dy()),
		Tokens: toks,
	}, nil
}

// Close is a no-op; clients are per-page.
func (s *OCRSource) Close() error {
	return nil
}

var _ Source = (*OCRSource)(nil)
