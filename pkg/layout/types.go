// Package layout reconstructs structured transaction records from the
// positioned text tokens of borderless statement tables. Coordinates follow
// the raster convention used by the token sources: origin at the top-left of
// the page, y increasing downward.
package layout

import (
	"sort"
	"strings"
)

// BoundingBox represents a rectangular area with coordinates
type BoundingBox struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// Width returns the width of the bounding box
func (b BoundingBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the height of the bounding box
func (b BoundingBox) Height() float64 {
	return b.Y1 - b.Y0
}

// CenterX returns the horizontal center of the bounding box
func (b BoundingBox) CenterX() float64 {
	return (b.X0 + b.X1) / 2
}

// CenterY returns the vertical center of the bounding box
func (b BoundingBox) CenterY() float64 {
	return (b.Y0 + b.Y1) / 2
}

// Contains checks if a point is within the bounding box
func (b BoundingBox) Contains(x, y float64) bool {
	return x >= b.X0 && x <= b.X1 && y >= b.Y0 && y <= b.Y1
}

// Intersects checks if two bounding boxes intersect
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return !(b.X1 < other.X0 || b.X0 > other.X1 || b.Y1 < other.Y0 || b.Y0 > other.Y1)
}

// OverlapX returns the horizontal overlap between two boxes, zero when disjoint.
func (b BoundingBox) OverlapX(other BoundingBox) float64 {
	left := max(b.X0, other.X0)
	right := min(b.X1, other.X1)
	if right <= left {
		return 0
	}
	return right - left
}

// Token is a single positioned text unit produced by a token source.
// Tokens are read-only once handed to the reconstruction pipeline.
type Token struct {
	Text       string
	X0         float64
	Y0         float64
	X1         float64
	Y1         float64
	Page       int
	Confidence float64 // OCR confidence in [0,1]; negative when unknown
}

// BBox returns the token's bounding box
func (t Token) BBox() BoundingBox {
	return BoundingBox{X0: t.X0, Y0: t.Y0, X1: t.X1, Y1: t.Y1}
}

// SortTokens orders tokens top-to-bottom, then left-to-right. Token sources
// are not required to pre-sort; all positional ordering happens here.
func SortTokens(tokens []Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].Y0 != tokens[j].Y0 {
			return tokens[i].Y0 < tokens[j].Y0
		}
		return tokens[i].X0 < tokens[j].X0
	})
}

// Region is a vertical band of a page, computed once and never mutated.
type Region struct {
	Top    float64
	Bottom float64
}

// ContainsY reports whether a y coordinate falls inside the region.
func (r Region) ContainsY(y float64) bool {
	return y >= r.Top && y < r.Bottom
}

// Regions partitions a page into header, anchor (data), and footer bands.
type Regions struct {
	Header Region
	Anchor Region
	Footer Region
}

// ValueKind declares what kind of value a column holds.
type ValueKind string

const (
	KindNumeric   ValueKind = "numeric"
	KindFreeText  ValueKind = "free-text"
	KindDateLike  ValueKind = "date-like"
	KindReference ValueKind = "reference-code"
)

// ColumnSpec describes an expected column: its header label, value kind, and
// whether a primary row must carry a value for it.
type ColumnSpec struct {
	Name      string    `yaml:"name"`
	Kind      ValueKind `yaml:"kind"`
	Mandatory bool      `yaml:"mandatory"`
	// Labels are alternative header spellings; Name is always tried first.
	Labels []string `yaml:"labels"`
}

// Column is a fitted logical column with its x-range on the page.
type Column struct {
	Name      string
	Kind      ValueKind
	Mandatory bool
	X0        float64
	X1        float64
	// Combined marks the backfilled description+reference column built under
	// Bleeding classification; its reference text is split out at row
	// assembly time by the literal-prefix rule, not by x-position.
	Combined bool
}

// ContainsX reports whether an x-center falls inside the column's range.
func (c Column) ContainsX(x float64) bool {
	return x >= c.X0 && x < c.X1
}

// Interference is the layout interference level of a page.
type Interference string

const (
	// Clean means reference tokens stay confined to their own column.
	Clean Interference = "clean"
	// Bleeding means reference tokens extend into numeric column ranges.
	Bleeding Interference = "bleeding"
)

// Grid is the fitted column set for one page. A rebuild replaces the whole
// grid rather than patching individual columns.
type Grid struct {
	Columns []Column
	Mode    Interference
	Page    int
	// HeaderBottom is the y below which data rows start; tokens above it are
	// column header labels and never join rows.
	HeaderBottom float64
}

// Column returns the column with the given name, if present.
func (g Grid) Column(name string) (Column, bool) {
	for _, c := range g.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// NumericColumns returns the numeric columns in left-to-right order.
func (g Grid) NumericColumns() []Column {
	var out []Column
	for _, c := range g.Columns {
		if c.Kind == KindNumeric {
			out = append(out, c)
		}
	}
	return out
}

// RowKind classifies an assembled row.
type RowKind string

const (
	// PrimaryRow starts a new transaction.
	PrimaryRow RowKind = "primary"
	// ContinuationRow extends the description of the preceding primary row.
	ContinuationRow RowKind = "continuation"
)

// Cell is the group of tokens assigned to one column of one row.
type Cell struct {
	Column string
	Kind   ValueKind
	Tokens []Token
}

// Text joins the cell's token texts with single spaces, left to right.
func (c Cell) Text() string {
	parts := make([]string, 0, len(c.Tokens))
	for _, t := range c.Tokens {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

// Row is an ordered set of cells, one per column, anchored at a y position.
type Row struct {
	Kind   RowKind
	Anchor float64
	Band   Region
	Cells  []Cell
	Page   int
	// Incomplete is set by drift correction when a mandatory numeric column
	// is still empty; the row is emitted flagged rather than dropped.
	Incomplete bool
}

// Cell returns the row's cell for the named column.
func (r *Row) Cell(column string) *Cell {
	for i := range r.Cells {
		if r.Cells[i].Column == column {
			return &r.Cells[i]
		}
	}
	return nil
}

// FieldValue is one finalized column value with the cell box it came from.
// The box lets the validator re-render the value at its original position.
type FieldValue struct {
	Column string
	Kind   ValueKind
	Text   string
	Box    BoundingBox
}

// TransactionRecord is the finalized output unit: one value per column, all
// continuation text folded into the description field. Field text preserves
// the literal character content of the source document.
type TransactionRecord struct {
	Page   int
	Anchor float64
	Fields []FieldValue
	// Incomplete flags a record whose mandatory numeric field stayed empty
	// after drift correction. Missing is never represented as zero.
	Incomplete bool
}

// Value returns the text of the named field, empty when absent.
func (r TransactionRecord) Value(name string) string {
	for _, f := range r.Fields {
		if f.Column == name {
			return f.Text
		}
	}
	return ""
}

// Field returns the named field and whether it exists.
func (r TransactionRecord) Field(name string) (FieldValue, bool) {
	for _, f := range r.Fields {
		if f.Column == name {
			return f, true
		}
	}
	return FieldValue{}, false
}
