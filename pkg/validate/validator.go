// Package validate re-renders reconstructed transaction records into a
// page-like layout and diffs the result against the source page, surfacing
// extraction errors before they reach output. The validator only detects;
// it never repairs a record in place.
package validate

import (
	"context"
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/layout"
)

// Severity grades a discrepancy.
type Severity string

const (
	// SeverityCosmetic covers font or position drift with identical content.
	SeverityCosmetic Severity = "cosmetic"
	// SeverityDataAffecting covers differing text or numbers. These must
	// reach the caller and are never silently auto-corrected.
	SeverityDataAffecting Severity = "data-affecting"
)

// Discrepancy is one region-level mismatch between the source page and the
// reconstruction.
type Discrepancy struct {
	Page     int
	Column   string
	Box      layout.BoundingBox
	Expected string
	Observed string
	Severity Severity
	Score    float64
}

// DiscrepancyReport aggregates mismatches grouped by page and column.
type DiscrepancyReport struct {
	Entries []Discrepancy
}

// DataAffecting returns only the data-affecting entries.
func (r DiscrepancyReport) DataAffecting() []Discrepancy {
	var out []Discrepancy
	for _, d := range r.Entries {
		if d.Severity == SeverityDataAffecting {
			out = append(out, d)
		}
	}
	return out
}

// Clean reports whether no data-affecting discrepancy was found.
func (r DiscrepancyReport) Clean() bool {
	return len(r.DataAffecting()) == 0
}

// Placement is one field value positioned for re-rendering.
type Placement struct {
	Text string
	Box  layout.BoundingBox
}

// Renderer draws field values into a page-sized canvas. Implementations must
// wrap text that exceeds its box width onto additional lines.
type Renderer interface {
	RenderPage(width, height float64, placements []Placement) (image.Image, error)
}

// Comparator diffs two rendered pages and returns the differing regions with
// a magnitude score in [0,1].
type Comparator interface {
	Compare(original, reconstruction image.Image) ([]DiffRegion, error)
}

// DiffRegion is a differing area reported by a Comparator.
type DiffRegion struct {
	Box   layout.BoundingBox
	Score float64
}

// SourcePage is the original page the reconstruction is checked against.
// When Tokens are supplied the validator compares at token level; otherwise
// it falls back to rendering both sides and comparing pixels.
type SourcePage struct {
	Number int
	Width  float64
	Height float64
	Image  image.Image
	Tokens []layout.Token
}

// Validator checks reconstructed records against their source page.
type Validator struct {
	renderer   Renderer
	comparator Comparator
	// pixelCutoff is the diff score at or above which a pixel-level region
	// overlapping a value field counts as data-affecting.
	pixelCutoff float64
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithRenderer overrides the rendering collaborator.
func WithRenderer(r Renderer) ValidatorOption {
	return func(v *Validator) { v.renderer = r }
}

// WithComparator overrides the comparison collaborator.
func WithComparator(c Comparator) ValidatorOption {
	return func(v *Validator) { v.comparator = c }
}

// WithPixelCutoff sets the data-affecting score threshold for pixel diffs.
func WithPixelCutoff(cutoff float64) ValidatorOption {
	return func(v *Validator) { v.pixelCutoff = cutoff }
}

// New builds a validator with the default raster renderer and block
// comparator unless overridden.
func New(opts ...ValidatorOption) *Validator {
	v := &Validator{
		renderer:    NewRasterRenderer(),
		comparator:  NewBlockComparator(),
		pixelCutoff: 0.2,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate re-renders the records' fields at the positions they were
// extracted from and compares against the source page. Records from other
// pages are ignored.
func (v *Validator) Validate(ctx context.Context, records []layout.TransactionRecord, source SourcePage) (DiscrepancyReport, error) {
	fields := pageFields(records, source.Number)
	if len(source.Tokens) > 0 {
		return v.compareTokens(fields, source), nil
	}
	if source.Image == nil {
		return DiscrepancyReport{}, fmt.Errorf("source page %d has neither tokens nor an image", source.Number)
	}
	return v.comparePixels(ctx, fields, source)
}

type pageField struct {
	column string
	kind   layout.ValueKind
	text   string
	box    layout.BoundingBox
}

func pageFields(records []layout.TransactionRecord, page int) []pageField {
	var out []pageField
	for _, rec := range records {
		if rec.Page != page {
			continue
		}
		for _, f := range rec.Fields {
			if f.Text == "" {
				continue
			}
			out = append(out, pageField{column: f.Column, kind: f.Kind, text: f.Text, box: f.Box})
		}
	}
	return out
}

// compareTokens checks each field's text against the source tokens lying
// inside its box. Identical content with different spacing is cosmetic;
// different content is data-affecting.
func (v *Validator) compareTokens(fields []pageField, source SourcePage) DiscrepancyReport {
	var report DiscrepancyReport
	for _, f := range fields {
		observed := tokensInBox(source.Tokens, f.box)
		expected := strings.Join(strings.Fields(f.text), " ")
		if observed == expected {
			continue
		}
		severity := SeverityDataAffecting
		if squash(observed) == squash(expected) {
			severity = SeverityCosmetic
		}
		report.Entries = append(report.Entries, Discrepancy{
			Page:     source.Number,
			Column:   f.column,
			Box:      f.box,
			Expected: expected,
			Observed: observed,
			Severity: severity,
			Score:    1,
		})
	}
	return report
}

// tokensInBox joins the source tokens lying fully inside a field box. Full
// containment, not center containment: a field box is the union of the
// tokens that produced the field, so its own tokens always qualify, while a
// neighboring column's token that merely pokes into the box does not.
func tokensInBox(tokens []layout.Token, box layout.BoundingBox) string {
	var inside []layout.Token
	for _, t := range tokens {
		if t.X0 >= box.X0 && t.X1 <= box.X1 && t.Y0 >= box.Y0 && t.Y1 <= box.Y1 {
			inside = append(inside, t)
		}
	}
	sort.SliceStable(inside, func(i, j int) bool {
		if inside[i].Y0 != inside[j].Y0 {
			return inside[i].Y0 < inside[j].Y0
		}
		return inside[i].X0 < inside[j].X0
	})
	parts := make([]string, 0, len(inside))
	for _, t := range inside {
		parts = append(parts, t.Text)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// comparePixels renders the reconstruction and asks the comparator for
// differing regions. A region overlapping a value field at or above the
// cutoff score is data-affecting; everything else is cosmetic drift.
func (v *Validator) comparePixels(ctx context.Context, fields []pageField, source SourcePage) (DiscrepancyReport, error) {
	if err := ctx.Err(); err != nil {
		return DiscrepancyReport{}, err
	}
	placements := make([]Placement, 0, len(fields))
	for _, f := range fields {
		placements = append(placements, Placement{Text: f.text, Box: f.box})
	}
	rendered, err := v.renderer.RenderPage(source.Width, source.Height, placements)
	if err != nil {
		return DiscrepancyReport{}, fmt.Errorf("render reconstruction: %w", err)
	}
	regions, err := v.comparator.Compare(source.Image, rendered)
	if err != nil {
		return DiscrepancyReport{}, fmt.Errorf("compare pages: %w", err)
	}

	var report DiscrepancyReport
	for _, region := range regions {
		d := Discrepancy{
			Page:     source.Number,
			Box:      region.Box,
			Severity: SeverityCosmetic,
			Score:    region.Score,
		}
		for _, f := range fields {
			if !region.Box.Intersects(f.box) {
				continue
			}
			d.Column = f.column
			d.Expected = f.text
			if region.Score >= v.pixelCutoff {
				d.Severity = SeverityDataAffecting
			}
			break
		}
		report.Entries = append(report.Entries, d)
	}
	return report, nil
}
