package layout

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// RegionSplit is the outcome of region filtering: the page bands plus the
// tokens partitioned into them. Header and footer tokens are excluded from
// all downstream table logic but stay available for page-level metadata.
type RegionSplit struct {
	Regions Regions
	Header  []Token
	Anchor  []Token
	Footer  []Token
}

// FilterRegions partitions a page's tokens into header, anchor, and footer
// bands. Band boundaries come from the configured absolute cutoffs when set,
// otherwise from the anchor title line and the first stop marker below it.
// When neither a cutoff nor the anchor title resolves, the filter fails with
// ErrRegionNotFound; downstream stages must not run on an unidentified
// region.
func FilterRegions(tokens []Token, cfg *Config) (RegionSplit, error) {
	return filterRegions(tokens, cfg, false)
}

// FilterRegionsContinuation partitions a page that continues a table locked
// in on an earlier page. The anchor title is typically absent here, so a
// missing title means the data region starts at the top of the page instead
// of failing.
func FilterRegionsContinuation(tokens []Token, cfg *Config) (RegionSplit, error) {
	return filterRegions(tokens, cfg, true)
}

func filterRegions(tokens []Token, cfg *Config, continuation bool) (RegionSplit, error) {
	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	SortTokens(sorted)

	top := cfg.HeaderCutoff
	if top == 0 {
		_, lineBottom, ok := findMarkerLine(sorted, cfg.AnchorTitle, cfg.RowTolerance)
		switch {
		case ok:
			top = lineBottom
		case continuation:
			top = 0
		default:
			return RegionSplit{}, fmt.Errorf("%w: anchor title %q not on page", ErrRegionNotFound, cfg.AnchorTitle)
		}
	}

	// The stop marker line itself belongs to the footer, so the boundary is
	// the line's top edge.
	bottom := cfg.FooterCutoff
	if bottom == 0 {
		bottom = math.Inf(1)
		for _, marker := range cfg.StopMarkers {
			if lineTop, _, ok := findMarkerLineBelow(sorted, marker, top, cfg.RowTolerance); ok && lineTop < bottom {
				bottom = lineTop
			}
		}
	}
	if bottom <= top {
		return RegionSplit{}, fmt.Errorf("%w: footer boundary %.1f above anchor start %.1f", ErrRegionNotFound, bottom, top)
	}

	split := RegionSplit{
		Regions: Regions{
			Header: Region{Top: 0, Bottom: top},
			Anchor: Region{Top: top, Bottom: bottom},
			Footer: Region{Top: bottom, Bottom: math.Inf(1)},
		},
	}
	for _, t := range sorted {
		y := t.BBox().CenterY()
		switch {
		case y < top:
			split.Header = append(split.Header, t)
		case y < bottom:
			split.Anchor = append(split.Anchor, t)
		default:
			split.Footer = append(split.Footer, t)
		}
	}
	return split, nil
}

// findMarkerLine locates the line whose joined text contains the marker and
// returns the line's vertical extent. Matching is whitespace-insensitive so
// that a title split across several tokens still matches.
func findMarkerLine(tokens []Token, marker string, tol float64) (float64, float64, bool) {
	return findMarkerLineBelow(tokens, marker, math.Inf(-1), tol)
}

func findMarkerLineBelow(tokens []Token, marker string, minY float64, tol float64) (float64, float64, bool) {
	if marker == "" {
		return 0, 0, false
	}
	needle := squash(marker)
	for _, line := range GroupIntoLines(tokens, tol) {
		if len(line) == 0 || line[0].Y0 < minY {
			continue
		}
		var sb strings.Builder
		top := math.Inf(1)
		bottom := 0.0
		for _, t := range line {
			sb.WriteString(t.Text)
			if t.Y0 < top {
				top = t.Y0
			}
			if t.Y1 > bottom {
				bottom = t.Y1
			}
		}
		if strings.Contains(squash(sb.String()), needle) {
			return top, bottom, true
		}
	}
	return 0, 0, false
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// GroupIntoLines groups tokens into lines by y proximity. A zero tolerance
// derives the window from the observed median token height.
func GroupIntoLines(tokens []Token, tol float64) [][]Token {
	if len(tokens) == 0 {
		return nil
	}
	if tol == 0 {
		tol = MedianTokenHeight(tokens) * 0.6
	}
	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox().CenterY() < sorted[j].BBox().CenterY()
	})

	var lines [][]Token
	current := []Token{sorted[0]}
	currentY := sorted[0].BBox().CenterY()
	for _, t := range sorted[1:] {
		y := t.BBox().CenterY()
		if y-currentY > tol {
			lines = append(lines, sortLine(current))
			current = nil
			currentY = y
		}
		current = append(current, t)
	}
	lines = append(lines, sortLine(current))
	return lines
}

func sortLine(line []Token) []Token {
	sort.SliceStable(line, func(i, j int) bool { return line[i].X0 < line[j].X0 })
	return line
}

// MedianTokenHeight returns the median bounding-box height of the tokens,
// used to derive banding tolerances when none is configured.
func MedianTokenHeight(tokens []Token) float64 {
	if len(tokens) == 0 {
		return 0
	}
	heights := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		if h := t.BBox().Height(); h > 0 {
			heights = append(heights, h)
		}
	}
	if len(heights) == 0 {
		return 0
	}
	sort.Float64s(heights)
	return heights[len(heights)/2]
}
