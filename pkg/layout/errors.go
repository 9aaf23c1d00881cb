package layout

import (
	"errors"
	"fmt"
)

// Sentinel errors for the page-fatal failure modes. Both abort the failing
// page's pipeline only; other pages keep processing.
var (
	// ErrRegionNotFound means the anchor data region could not be located.
	ErrRegionNotFound = errors.New("anchor region not found")
	// ErrGridFit means numeric-column clustering did not converge to the
	// expected count or the fitted centers failed to separate.
	ErrGridFit = errors.New("grid fit failure")
)

// Stage names a pipeline stage for error reporting.
type Stage string

const (
	StageRegionFilter Stage = "region-filter"
	StageClassify     Stage = "classify"
	StageGrid         Stage = "grid"
	StageRows         Stage = "rows"
	StageDrift        Stage = "drift"
	StageTokens       Stage = "tokens"
)

// PageError reports a page-level failure with the stage it happened in.
type PageError struct {
	Page  int
	Stage Stage
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %s: %v", e.Page, e.Stage, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// NewPageError wraps a stage failure for one page.
func NewPageError(page int, stage Stage, err error) *PageError {
	return &PageError{Page: page, Stage: stage, Err: err}
}
