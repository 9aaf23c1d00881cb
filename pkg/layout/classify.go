package layout

import "math"

// Classify decides the interference level of a page's anchor region by
// geometric overlap: reference-prefixed tokens whose bounding boxes extend
// into the x-range where amounts live make the page Bleeding. Partial
// overlaps below the configured fraction are ambiguous and also classified
// Bleeding; ambiguity always resolves to the stricter mode.
func Classify(anchor []Token, cfg *Config) Interference {
	mode, _ := ClassifyDetail(anchor, cfg)
	return mode
}

// ClassifyDetail additionally reports whether the decision was ambiguous:
// every observed overlap stayed below the configured fraction of its token's
// width. Ambiguous pages still come back Bleeding.
func ClassifyDetail(anchor []Token, cfg *Config) (Interference, bool) {
	var refs []Token
	for _, t := range anchor {
		if cfg.IsReference(t.Text) {
			refs = append(refs, t)
		}
	}
	if len(refs) == 0 {
		return Clean, false
	}

	zoneLeft := numericZoneLeft(anchor, cfg)
	if math.IsInf(zoneLeft, 1) {
		// Reference tokens with no amounts anywhere: the numeric zone cannot
		// be bounded, so the stricter mode applies.
		return Bleeding, true
	}
	zone := BoundingBox{X0: zoneLeft, X1: math.Inf(1)}
	overlapping := false
	ambiguous := true
	for _, t := range refs {
		overlap := t.BBox().OverlapX(zone)
		if overlap <= 0 {
			continue
		}
		overlapping = true
		if w := t.BBox().Width(); w > 0 && overlap/w >= cfg.OverlapFraction {
			ambiguous = false
		}
	}
	if !overlapping {
		return Clean, false
	}
	return Bleeding, ambiguous
}

// numericZoneLeft estimates the left edge of the area reserved for numeric
// columns as the leftmost x of any currency-formatted token.
func numericZoneLeft(anchor []Token, cfg *Config) float64 {
	left := math.Inf(1)
	for _, t := range anchor {
		if cfg.IsAmount(t.Text) && t.X0 < left {
			left = t.X0
		}
	}
	return left
}
