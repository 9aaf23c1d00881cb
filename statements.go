// Package statements reconstructs transaction tables from borderless,
// noise-prone bank statement pages. It turns positioned text tokens into
// structured transaction records and can validate those records back against
// the source document.
package statements

import (
	"context"

	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/layout"
	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/pipeline"
	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/tokens"
	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/validate"
)

// Re-export types from the layout package for the public API
type (
	Token             = layout.Token
	BoundingBox       = layout.BoundingBox
	Config            = layout.Config
	ColumnSpec        = layout.ColumnSpec
	TransactionRecord = layout.TransactionRecord
	FieldValue        = layout.FieldValue
	PageError         = layout.PageError
	Profile           = pipeline.Profile
	Result            = pipeline.Result
	SourcePage        = validate.SourcePage
	DiscrepancyReport = validate.DiscrepancyReport
)

// Column value kinds
const (
	KindNumeric   = layout.KindNumeric
	KindFreeText  = layout.KindFreeText
	KindDateLike  = layout.KindDateLike
	KindReference = layout.KindReference
)

// Re-export option functions
var (
	WithColumns         = layout.WithColumns
	WithAnchorTitle     = layout.WithAnchorTitle
	WithStopMarkers     = layout.WithStopMarkers
	WithReferencePrefix = layout.WithReferencePrefix
	WithDatePattern     = layout.WithDatePattern
	WithNumericLocale   = layout.WithNumericLocale
	NewConfig           = layout.NewConfig
	DefaultProfile      = pipeline.DefaultProfile
	LoadProfile         = pipeline.LoadProfile
)

// Reconstruct extracts transaction records from per-page token sets. Pages
// are independent; a page that cannot be reconstructed contributes a
// PageError instead of aborting the run.
func Reconstruct(pageTokens [][]layout.Token, cfg layout.Config) ([]layout.TransactionRecord, []layout.PageError) {
	proc, err := pipeline.New(cfg)
	if err != nil {
		return nil, []layout.PageError{*layout.NewPageError(0, layout.StageRegionFilter, err)}
	}
	res := proc.Run(context.Background(), pageTokens)
	return res.Records, res.Errors
}

// Validate checks reconstructed records against a source page and reports
// discrepancies by severity. It never mutates the records.
func Validate(records []layout.TransactionRecord, source validate.SourcePage) (validate.DiscrepancyReport, error) {
	return validate.New().Validate(context.Background(), records, source)
}

// Open opens a PDF statement and returns a token source. The preferred
// text-layer backend is tried first, then the fallback reader.
func Open(path string) (tokens.Source, error) {
	return tokens.Open(path)
}
