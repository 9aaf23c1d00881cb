// Package pipeline orchestrates table reconstruction across the pages of a
// statement: a sequential layout pass that classifies each page and fits its
// column grid, a parallel assembly pass over independent pages, and a final
// sequential stitch that folds text carried across page breaks.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/internal/logger"
	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/layout"
)

const (
	defaultWorkers     = 4
	defaultPageTimeout = 30 * time.Second
)

// Result is the outcome of a full statement run. Records are ordered by
// page, then by vertical position. Pages that failed are reported in Errors
// and contribute no records; a failed page never aborts the run.
type Result struct {
	RunID   string
	Records []layout.TransactionRecord
	Errors  []layout.PageError
}

// Processor reconstructs transaction records from page token sets.
type Processor struct {
	cfg         layout.Config
	workers     int
	pageTimeout time.Duration
	log         zerolog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithWorkers bounds the number of pages assembled concurrently.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithPageTimeout bounds the wall time spent assembling a single page.
func WithPageTimeout(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.pageTimeout = d
		}
	}
}

// WithLogger sets the structured logger used for run progress.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Processor) {
		p.log = log
	}
}

// New creates a Processor for the given layout configuration.
func New(cfg layout.Config, opts ...Option) (*Processor, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	p := &Processor{
		cfg:         cfg,
		workers:     defaultWorkers,
		pageTimeout: defaultPageTimeout,
		log:         logger.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// pagePlan is the output of the sequential layout pass for one page.
type pagePlan struct {
	split layout.RegionSplit
	grid  layout.Grid
	err   *layout.PageError
}

// pageOutput is the output of the parallel assembly pass for one page. The
// done flag distinguishes a page that completed with no records from one
// that was never scheduled.
type pageOutput struct {
	records []layout.TransactionRecord
	leading []layout.Token
	err     *layout.PageError
	done    bool
}

// Run reconstructs records from per-page token sets. Page numbering in the
// output is 1-based and follows slice order.
func (p *Processor) Run(ctx context.Context, pages [][]layout.Token) Result {
	runID := uuid.New().String()
	log := p.log.With().Str("run_id", runID).Int("pages", len(pages)).Logger()
	log.Info().Msg("starting reconstruction")

	plans := p.layoutPass(pages, log)
	outputs := p.assemblePass(ctx, pages, plans, log)

	res := Result{RunID: runID}
	for i, plan := range plans {
		if plan.err != nil {
			res.Errors = append(res.Errors, *plan.err)
			continue
		}
		out := outputs[i]
		if out.err != nil {
			res.Errors = append(res.Errors, *out.err)
			continue
		}
		stitchLeading(&res, out.leading, &p.cfg)
		res.Records = append(res.Records, out.records...)
	}

	log.Info().
		Int("records", len(res.Records)).
		Int("page_errors", len(res.Errors)).
		Msg("reconstruction finished")
	return res
}

// layoutPass classifies each page and fits its grid sequentially. The first
// page that yields a grid becomes the template for later pages that repeat
// the table without its header block.
func (p *Processor) layoutPass(pages [][]layout.Token, log zerolog.Logger) []pagePlan {
	plans := make([]pagePlan, len(pages))
	var template *layout.Grid

	for i, tokens := range pages {
		pageNum := i + 1
		plans[i] = p.planPage(tokens, pageNum, template)
		if plans[i].err == nil && template == nil {
			g := plans[i].grid
			template = &g
		}
		if plans[i].err != nil {
			log.Warn().Int("page", pageNum).Str("stage", string(plans[i].err.Stage)).
				Err(plans[i].err.Err).Msg("page layout failed")
		} else {
			log.Debug().Int("page", pageNum).
				Str("mode", string(plans[i].grid.Mode)).
				Int("columns", len(plans[i].grid.Columns)).
				Msg("grid fitted")
		}
	}
	return plans
}

func (p *Processor) planPage(tokens []layout.Token, pageNum int, template *layout.Grid) pagePlan {
	split, err := layout.FilterRegions(tokens, &p.cfg)
	if err != nil {
		if !errors.Is(err, layout.ErrRegionNotFound) || template == nil {
			return pagePlan{err: layout.NewPageError(pageNum, layout.StageRegionFilter, err)}
		}
		// No anchor title on this page: treat it as a continuation of the
		// table started on an earlier page and reuse that page's grid.
		split, err = layout.FilterRegionsContinuation(tokens, &p.cfg)
		if err != nil {
			return pagePlan{err: layout.NewPageError(pageNum, layout.StageRegionFilter, err)}
		}
		grid := retarget(*template, pageNum)
		return pagePlan{split: split, grid: grid}
	}

	// A page that carries its own title also carries its own header block,
	// so a grid that does not fit is a page failure. The template is only
	// for title-less continuation pages above.
	mode := layout.Classify(split.Anchor, &p.cfg)
	grid, err := layout.BuildGrid(split.Anchor, mode, &p.cfg, pageNum)
	if err != nil {
		return pagePlan{err: layout.NewPageError(pageNum, layout.StageGrid, err)}
	}
	return pagePlan{split: split, grid: grid}
}

// retarget rebinds a template grid to another page. Continuation pages have
// no header block, so banding must start at the top of the anchor region.
func retarget(template layout.Grid, pageNum int) layout.Grid {
	g := template
	g.Columns = append([]layout.Column(nil), template.Columns...)
	g.Page = pageNum
	g.HeaderBottom = 0
	return g
}

// assemblePass runs row assembly, drift correction and record folding for
// each planned page on a bounded worker pool. Results are keyed by page
// index, so output order does not depend on scheduling.
func (p *Processor) assemblePass(ctx context.Context, pages [][]layout.Token, plans []pagePlan, log zerolog.Logger) []pageOutput {
	outputs := make([]pageOutput, len(pages))
	work := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > len(pages) {
		workers = max(len(pages), 1)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				outputs[i] = p.assemblePage(ctx, pages[i], plans[i], i+1)
			}
		}()
	}

	for i := range pages {
		if plans[i].err != nil {
			continue
		}
		select {
		case work <- i:
		case <-ctx.Done():
			close(work)
			wg.Wait()
			p.markCancelled(outputs, plans, ctx.Err())
			return outputs
		}
	}
	close(work)
	wg.Wait()

	for i := range outputs {
		if plans[i].err == nil && outputs[i].err != nil {
			log.Warn().Int("page", i+1).Err(outputs[i].err.Err).Msg("page assembly failed")
		}
	}
	return outputs
}

func (p *Processor) assemblePage(ctx context.Context, tokens []layout.Token, plan pagePlan, pageNum int) pageOutput {
	pageCtx, cancel := context.WithTimeout(ctx, p.pageTimeout)
	defer cancel()

	done := make(chan pageOutput, 1)
	go func() {
		asm := layout.AssembleRows(plan.split.Anchor, plan.grid, &p.cfg)
		layout.CorrectDrift(asm.Rows, plan.grid, &p.cfg)
		records := layout.FinalizeRows(asm.Rows, plan.grid, &p.cfg)
		// Slice order is authoritative; tokens may carry no page number.
		for i := range records {
			records[i].Page = pageNum
		}
		done <- pageOutput{records: records, leading: asm.Leading}
	}()

	select {
	case out := <-done:
		out.done = true
		return out
	case <-pageCtx.Done():
		return pageOutput{err: layout.NewPageError(pageNum, layout.StageRows, pageCtx.Err()), done: true}
	}
}

// markCancelled fails every page the assembly pass never reached.
func (p *Processor) markCancelled(outputs []pageOutput, plans []pagePlan, cause error) {
	for i := range outputs {
		if plans[i].err == nil && !outputs[i].done {
			outputs[i].err = layout.NewPageError(i+1, layout.StageRows, cause)
		}
	}
}

// stitchLeading folds continuation text that opens a page into the last
// record of the preceding pages. The run is partitioned by the same
// literal-prefix rule as a combined cell, so a masked run trailing the
// reference prefix stays with the reference.
func stitchLeading(res *Result, leading []layout.Token, cfg *layout.Config) {
	if len(leading) == 0 || len(res.Records) == 0 {
		return
	}
	last := &res.Records[len(res.Records)-1]
	desc, ref := layout.SplitReference(leading, cfg)
	for _, t := range desc {
		appendToField(last, fieldForKind(cfg, layout.KindFreeText), t)
	}
	for _, t := range ref {
		appendToField(last, fieldForKind(cfg, layout.KindReference), t)
	}
}

func fieldForKind(cfg *layout.Config, kind layout.ValueKind) string {
	for _, spec := range cfg.Columns {
		if spec.Kind == kind {
			return spec.Name
		}
	}
	return ""
}

func appendToField(rec *layout.TransactionRecord, name string, t layout.Token) {
	if name == "" {
		return
	}
	for i := range rec.Fields {
		f := &rec.Fields[i]
		if f.Column != name {
			continue
		}
		if f.Text == "" {
			f.Text = t.Text
			f.Box = t.BBox()
		} else {
			f.Text += " " + t.Text
			f.Box = unionBox(f.Box, t.BBox())
		}
		return
	}
}

func unionBox(a, b layout.BoundingBox) layout.BoundingBox {
	if a.Width() == 0 && a.Height() == 0 {
		return b
	}
	return layout.BoundingBox{
		X0: min(a.X0, b.X0),
		Y0: min(a.Y0, b.Y0),
		X1: max(a.X1, b.X1),
		Y1: max(a.Y1, b.Y1),
	}
}
