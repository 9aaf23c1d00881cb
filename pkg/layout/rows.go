package layout

import "strings"

// Assembly is the output of row grouping for one page: the ordered rows plus
// any continuation text that appeared before the first primary row. Leading
// text belongs to the previous page's last transaction and is merged there
// by the caller.
type Assembly struct {
	Rows    []Row
	Leading []Token
}

// AssembleRows groups anchor-region tokens into rows ordered by y-position
// and classifies each as primary or continuation. A row is primary when a
// numeric cell holds a valid amount or a date cell matches the date pattern;
// a row carrying only description/reference text is a continuation. At
// finalization a continuation's text folds into the nearest preceding
// primary row; it is never promoted into its own transaction.
func AssembleRows(tokens []Token, grid Grid, cfg *Config) Assembly {
	data := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.BBox().CenterY() <= grid.HeaderBottom {
			continue
		}
		data = append(data, t)
	}
	if len(data) == 0 {
		return Assembly{}
	}

	var asm Assembly
	seenPrimary := false
	for _, band := range GroupIntoLines(data, cfg.RowTolerance) {
		row := buildRow(band, grid, cfg)
		if row.Kind == PrimaryRow {
			seenPrimary = true
		} else if !seenPrimary {
			asm.Leading = append(asm.Leading, band...)
			continue
		}
		asm.Rows = append(asm.Rows, row)
	}
	return asm
}

func buildRow(band []Token, grid Grid, cfg *Config) Row {
	row := Row{
		Anchor: band[0].Y0,
		Band:   Region{Top: band[0].Y0, Bottom: band[0].Y1},
		Page:   band[0].Page,
		Cells:  make([]Cell, len(grid.Columns)),
	}
	for i, col := range grid.Columns {
		row.Cells[i] = Cell{Column: col.Name, Kind: col.Kind}
	}
	for _, t := range band {
		if t.Y0 < row.Band.Top {
			row.Band.Top = t.Y0
			row.Anchor = t.Y0
		}
		if t.Y1 > row.Band.Bottom {
			row.Band.Bottom = t.Y1
		}
		idx := assignColumn(t, grid, cfg)
		if idx < 0 {
			continue
		}
		row.Cells[idx].Tokens = append(row.Cells[idx].Tokens, t)
	}

	row.Kind = ContinuationRow
	for i, col := range grid.Columns {
		switch col.Kind {
		case KindNumeric:
			for _, t := range row.Cells[i].Tokens {
				if cfg.IsAmount(t.Text) {
					row.Kind = PrimaryRow
				}
			}
		case KindDateLike:
			for _, t := range row.Cells[i].Tokens {
				if cfg.MatchesDate(t.Text) {
					row.Kind = PrimaryRow
				}
			}
		}
	}
	return row
}

// assignColumn routes a token to its column index. Under Bleeding mode a
// reference token always lands in the combined column regardless of its
// x-extent; that is the whole point of the skeleton-first grid.
func assignColumn(t Token, grid Grid, cfg *Config) int {
	if grid.Mode == Bleeding && cfg.IsReference(t.Text) {
		for i, col := range grid.Columns {
			if col.Combined {
				return i
			}
		}
	}
	x := t.BBox().CenterX()
	for i, col := range grid.Columns {
		if col.ContainsX(x) {
			return i
		}
	}
	return -1
}

// FinalizeRows turns primary rows into transaction records: exactly one
// record per primary row, with the text of every continuation row up to the
// next primary folded into the description in y-order. Field text keeps the
// literal source characters; the reference part of a combined cell is split
// out by the literal-prefix rule.
func FinalizeRows(rows []Row, grid Grid, cfg *Config) []TransactionRecord {
	var records []TransactionRecord
	for i := 0; i < len(rows); i++ {
		if rows[i].Kind != PrimaryRow {
			continue
		}
		merged := cloneRow(rows[i])
		for j := i + 1; j < len(rows) && rows[j].Kind == ContinuationRow; j++ {
			mergeContinuation(&merged, rows[j], grid)
		}
		records = append(records, finalizeRow(merged, grid, cfg))
	}
	return records
}

func cloneRow(row Row) Row {
	out := row
	out.Cells = make([]Cell, len(row.Cells))
	for i, c := range row.Cells {
		out.Cells[i] = Cell{Column: c.Column, Kind: c.Kind, Tokens: append([]Token(nil), c.Tokens...)}
	}
	return out
}

// mergeContinuation appends a continuation row's tokens to the primary row.
// Reference-column tokens keep their column; everything else extends the
// description (or combined) cell.
func mergeContinuation(primary *Row, cont Row, grid Grid) {
	descIdx := -1
	for i, col := range grid.Columns {
		if col.Combined || col.Kind == KindFreeText {
			descIdx = i
			break
		}
	}
	for i, col := range grid.Columns {
		src := cont.Cells[i]
		if len(src.Tokens) == 0 {
			continue
		}
		dst := i
		if col.Kind != KindReference && !col.Combined && col.Kind != KindFreeText {
			dst = descIdx
		}
		if dst < 0 {
			continue
		}
		primary.Cells[dst].Tokens = append(primary.Cells[dst].Tokens, src.Tokens...)
	}
}

func finalizeRow(row Row, grid Grid, cfg *Config) TransactionRecord {
	rec := TransactionRecord{
		Page:       row.Page,
		Anchor:     row.Anchor,
		Incomplete: row.Incomplete,
	}
	for _, spec := range cfg.Columns {
		col, inGrid := grid.Column(spec.Name)
		switch {
		case inGrid && col.Combined:
			desc, ref := SplitReference(row.Cell(spec.Name).Tokens, cfg)
			rec.Fields = append(rec.Fields, fieldFromTokens(spec.Name, spec.Kind, desc))
			if refSpec, ok := referenceSpec(cfg); ok {
				rec.Fields = append(rec.Fields, fieldFromTokens(refSpec.Name, refSpec.Kind, ref))
			}
		case inGrid:
			rec.Fields = append(rec.Fields, fieldFromTokens(spec.Name, spec.Kind, row.Cell(spec.Name).Tokens))
		case spec.Kind == KindReference && grid.Mode == Bleeding:
			// Already emitted together with the combined column.
		default:
			rec.Fields = append(rec.Fields, FieldValue{Column: spec.Name, Kind: spec.Kind})
		}
	}
	return rec
}

func referenceSpec(cfg *Config) (ColumnSpec, bool) {
	for _, spec := range cfg.Columns {
		if spec.Kind == KindReference {
			return spec, true
		}
	}
	return ColumnSpec{}, false
}

// SplitReference partitions a combined cell's tokens into description and
// reference by the literal-prefix rule. Tokens following a prefix match that
// are themselves masked runs stay with the reference.
func SplitReference(tokens []Token, cfg *Config) (desc, ref []Token) {
	inRef := false
	for _, t := range tokens {
		switch {
		case cfg.IsReference(t.Text):
			inRef = true
			ref = append(ref, t)
		case inRef && strings.HasPrefix(strings.TrimSpace(t.Text), "*"):
			ref = append(ref, t)
		default:
			inRef = false
			desc = append(desc, t)
		}
	}
	return desc, ref
}

func fieldFromTokens(name string, kind ValueKind, tokens []Token) FieldValue {
	field := FieldValue{Column: name, Kind: kind}
	parts := make([]string, 0, len(tokens))
	for i, t := range tokens {
		parts = append(parts, t.Text)
		box := t.BBox()
		if i == 0 {
			field.Box = box
			continue
		}
		if box.X0 < field.Box.X0 {
			field.Box.X0 = box.X0
		}
		if box.Y0 < field.Box.Y0 {
			field.Box.Y0 = box.Y0
		}
		if box.X1 > field.Box.X1 {
			field.Box.X1 = box.X1
		}
		if box.Y1 > field.Box.Y1 {
			field.Box.Y1 = box.Y1
		}
	}
	field.Text = strings.Join(parts, " ")
	return field
}
