package layout

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// headerYTolerance bounds how far a header label may sit from the header row.
const headerYTolerance = 20.0

// centroidEpsilon is the convergence threshold for the numeric-column fit.
const centroidEpsilon = 0.5

// BuildGrid derives the column set for one page of anchor-region tokens.
//
// Under Clean classification every column is placed from its header label in
// a single deterministic pass, extending each label's box to the midpoint
// between it and its neighbors. Under Bleeding classification the grid is
// fitted skeleton-first: reference-prefixed tokens are masked out of all
// boundary computation, the numeric columns are anchored by clustering the
// remaining amount-token x-centers, and everything left of the leftmost
// numeric boundary backfills into a combined description+reference column.
// Fitting the numeric columns first keeps them from being corrupted by
// variable-length reference text.
func BuildGrid(anchor []Token, mode Interference, cfg *Config, page int) (Grid, error) {
	if len(cfg.Columns) == 0 {
		return Grid{}, fmt.Errorf("%w: no columns configured", ErrGridFit)
	}
	if mode == Bleeding {
		return buildBleedingGrid(anchor, cfg, page)
	}
	return buildCleanGrid(anchor, cfg, page)
}

func buildCleanGrid(anchor []Token, cfg *Config, page int) (Grid, error) {
	headers, err := locateHeaders(anchor, cfg.Columns)
	if err != nil {
		return Grid{}, err
	}
	cols := make([]Column, len(cfg.Columns))
	for i, spec := range cfg.Columns {
		box := headers[i].BBox()
		x0 := 0.0
		if i > 0 {
			x0 = (headers[i-1].X1 + box.X0) / 2
		}
		x1 := math.Inf(1)
		if i < len(cfg.Columns)-1 {
			x1 = (box.X1 + headers[i+1].X0) / 2
		}
		cols[i] = Column{
			Name:      spec.Name,
			Kind:      spec.Kind,
			Mandatory: spec.Mandatory,
			X0:        x0,
			X1:        x1,
		}
	}
	return Grid{Columns: cols, Mode: Clean, Page: page, HeaderBottom: headerBottom(headers)}, nil
}

func buildBleedingGrid(anchor []Token, cfg *Config, page int) (Grid, error) {
	// Mask pass: reference tokens do not vote on where columns lie.
	masked := make([]Token, 0, len(anchor))
	for _, t := range anchor {
		if cfg.IsReference(t.Text) {
			continue
		}
		masked = append(masked, t)
	}

	// Anchor pass: fit the numeric column centers from amount tokens only.
	var centers []float64
	for _, t := range masked {
		if cfg.IsAmount(t.Text) {
			centers = append(centers, t.BBox().CenterX())
		}
	}
	k := cfg.NumericCount()
	if k == 0 {
		return Grid{}, fmt.Errorf("%w: no numeric columns configured", ErrGridFit)
	}
	centroids, err := fitCentroids(centers, k, cfg)
	if err != nil {
		return Grid{}, err
	}

	// Numeric boundaries at midpoints between adjacent centroids. The left
	// edge of the leftmost numeric column mirrors its right half-gap.
	leftGap := 0.0
	if k > 1 {
		leftGap = (centroids[1] - centroids[0]) / 2
	} else {
		leftGap = cfg.MinSeparation
	}
	numLeft := centroids[0] - leftGap

	// Date columns sit left of the bleed zone and are still placed from
	// their header labels.
	var dateSpecs []ColumnSpec
	for _, spec := range cfg.Columns {
		if spec.Kind == KindDateLike {
			dateSpecs = append(dateSpecs, spec)
		}
	}
	dateHeaders, err := locateHeaders(masked, dateSpecs)
	if err != nil {
		return Grid{}, err
	}

	var cols []Column
	for i, spec := range dateSpecs {
		box := dateHeaders[i].BBox()
		x0 := 0.0
		if i > 0 {
			x0 = (dateHeaders[i-1].X1 + box.X0) / 2
		}
		var x1 float64
		if i < len(dateSpecs)-1 {
			x1 = (box.X1 + dateHeaders[i+1].X0) / 2
		} else if descX, ok := freeTextHeaderX(masked, cfg); ok && descX > box.X1 {
			x1 = (box.X1 + descX) / 2
		} else {
			x1 = box.X1 + 6
		}
		cols = append(cols, Column{Name: spec.Name, Kind: spec.Kind, Mandatory: spec.Mandatory, X0: x0, X1: x1})
	}

	// Backfill pass: everything between the date columns and the leftmost
	// numeric boundary is one combined description+reference column. The
	// reference text is split back out at row assembly by the literal-prefix
	// rule, never by x-position.
	combined := Column{Kind: KindFreeText, Combined: true, X1: numLeft}
	if n := len(cols); n > 0 {
		combined.X0 = cols[n-1].X1
	}
	for _, spec := range cfg.Columns {
		if spec.Kind == KindFreeText {
			combined.Name = spec.Name
			combined.Mandatory = spec.Mandatory
			break
		}
	}
	if combined.Name == "" {
		combined.Name = "description"
	}
	cols = append(cols, combined)

	var numericSpecs []ColumnSpec
	for _, spec := range cfg.Columns {
		if spec.Kind == KindNumeric {
			numericSpecs = append(numericSpecs, spec)
		}
	}
	for i, spec := range numericSpecs {
		x0 := numLeft
		if i > 0 {
			x0 = (centroids[i-1] + centroids[i]) / 2
		}
		x1 := math.Inf(1)
		if i < k-1 {
			x1 = (centroids[i] + centroids[i+1]) / 2
		}
		cols = append(cols, Column{Name: spec.Name, Kind: spec.Kind, Mandatory: spec.Mandatory, X0: x0, X1: x1})
	}

	grid := Grid{Columns: cols, Mode: Bleeding, Page: page, HeaderBottom: headerBottom(dateHeaders)}
	if extra := labelRowBottom(masked, cfg.Columns, grid.HeaderBottom); extra > grid.HeaderBottom {
		grid.HeaderBottom = extra
	}
	return grid, nil
}

// headerBottom is the lowest edge of the located header labels.
func headerBottom(headers []Token) float64 {
	bottom := 0.0
	for _, h := range headers {
		if h.Y1 > bottom {
			bottom = h.Y1
		}
	}
	return bottom
}

// labelRowBottom extends the header bottom over any remaining configured
// labels sitting on the same row (the numeric column labels, which do not
// participate in boundary fitting under Bleeding).
func labelRowBottom(tokens []Token, specs []ColumnSpec, rowBottom float64) float64 {
	bottom := rowBottom
	for _, t := range tokens {
		if t.Y0 > rowBottom {
			continue
		}
		for _, spec := range specs {
			if matchesLabel(t.Text, spec) && t.Y1 > bottom {
				bottom = t.Y1
			}
		}
	}
	return bottom
}

// fitCentroids clusters 1-D x-centers into k ordered centroids by iterated
// nearest-centroid assignment. The iteration cap and the minimum separation
// between adjacent centroids are both hard failures: a grid that cannot be
// fitted is reported, never guessed.
func fitCentroids(centers []float64, k int, cfg *Config) ([]float64, error) {
	if len(centers) < k {
		return nil, fmt.Errorf("%w: %d amount positions for %d numeric columns", ErrGridFit, len(centers), k)
	}
	sorted := make([]float64, len(centers))
	copy(sorted, centers)
	sort.Float64s(sorted)

	// Quantile initialization keeps the expected left-to-right order.
	centroids := make([]float64, k)
	for i := 0; i < k; i++ {
		idx := i * (len(sorted) - 1) / max(k-1, 1)
		centroids[i] = sorted[idx]
	}

	converged := false
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		sums := make([]float64, k)
		counts := make([]int, k)
		for _, x := range sorted {
			best := 0
			bestDist := math.Abs(x - centroids[0])
			for c := 1; c < k; c++ {
				if d := math.Abs(x - centroids[c]); d < bestDist {
					best = c
					bestDist = d
				}
			}
			sums[best] += x
			counts[best]++
		}
		shift := 0.0
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				return nil, fmt.Errorf("%w: numeric column %d attracted no amounts", ErrGridFit, c)
			}
			next := sums[c] / float64(counts[c])
			shift = math.Max(shift, math.Abs(next-centroids[c]))
			centroids[c] = next
		}
		if shift < centroidEpsilon {
			converged = true
			break
		}
	}
	if !converged {
		return nil, fmt.Errorf("%w: clustering did not converge within %d iterations", ErrGridFit, cfg.MaxIterations)
	}
	sort.Float64s(centroids)
	for i := 1; i < k; i++ {
		if centroids[i]-centroids[i-1] < cfg.MinSeparation {
			return nil, fmt.Errorf("%w: columns %d and %d separated by %.1f (< %.1f)",
				ErrGridFit, i-1, i, centroids[i]-centroids[i-1], cfg.MinSeparation)
		}
	}
	return centroids, nil
}

// freeTextHeaderX returns the left edge of the free-text column's header
// label when it can be found, used to bound the last date column.
func freeTextHeaderX(tokens []Token, cfg *Config) (float64, bool) {
	for _, spec := range cfg.Columns {
		if spec.Kind != KindFreeText {
			continue
		}
		headers, err := locateHeaders(tokens, []ColumnSpec{spec})
		if err != nil {
			return 0, false
		}
		return headers[0].X0, true
	}
	return 0, false
}

// locateHeaders finds one header token per spec, in left-to-right spec
// order, all sitting on the same header row. Label matching is
// case-insensitive and ignores trailing punctuation so that truncated OCR
// labels still resolve.
func locateHeaders(tokens []Token, specs []ColumnSpec) ([]Token, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	// The header row is the topmost line containing any expected label.
	rowY := math.Inf(1)
	for _, t := range tokens {
		for _, spec := range specs {
			if matchesLabel(t.Text, spec) && t.Y0 < rowY {
				rowY = t.Y0
			}
		}
	}
	if math.IsInf(rowY, 1) {
		return nil, fmt.Errorf("%w: no header labels found", ErrGridFit)
	}

	picked := make([]Token, len(specs))
	lastX := math.Inf(-1)
	for i, spec := range specs {
		found := false
		best := Token{X0: math.Inf(1)}
		for _, t := range tokens {
			if math.Abs(t.Y0-rowY) > headerYTolerance {
				continue
			}
			if !matchesLabel(t.Text, spec) {
				continue
			}
			// Honor the expected left-to-right order so repeated labels
			// resolve to distinct columns.
			if t.X0 <= lastX {
				continue
			}
			if t.X0 < best.X0 {
				best = t
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: header %q not found", ErrGridFit, spec.Name)
		}
		picked[i] = best
		lastX = best.X0
	}
	return picked, nil
}

func matchesLabel(text string, spec ColumnSpec) bool {
	got := normalizeLabel(text)
	if got == "" {
		return false
	}
	for _, label := range append([]string{spec.Name}, spec.Labels...) {
		want := normalizeLabel(label)
		if want == "" {
			continue
		}
		if got == want || strings.HasPrefix(want, got) && len(got) >= 4 {
			return true
		}
	}
	return false
}

func normalizeLabel(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.Trim(s, ".:")
}

