package layout

// CorrectDrift relocates misclassified tokens out of numeric cells: any
// token whose text does not parse as a signed amount under the configured
// locale (letters, or an unformatted digit run longer than a plausible
// amount) moves to the row's description cell. The pass is idempotent:
// after one run every numeric cell holds only valid amounts, so a second
// run finds nothing to move.
//
// When a mandatory numeric column is still empty afterwards, the primary row
// is marked Incomplete. Missing amounts are never defaulted to zero.
func CorrectDrift(rows []Row, grid Grid, cfg *Config) {
	descIdx := -1
	for i, col := range grid.Columns {
		if col.Combined || col.Kind == KindFreeText {
			descIdx = i
			break
		}
	}

	for r := range rows {
		row := &rows[r]
		for i, col := range grid.Columns {
			if col.Kind != KindNumeric {
				continue
			}
			cell := &row.Cells[i]
			kept := cell.Tokens[:0]
			for _, t := range cell.Tokens {
				if cfg.IsAmount(t.Text) && !cfg.isDigitRun(t.Text) {
					kept = append(kept, t)
					continue
				}
				if descIdx >= 0 {
					row.Cells[descIdx].Tokens = append(row.Cells[descIdx].Tokens, t)
				}
			}
			cell.Tokens = kept
		}
		if row.Kind != PrimaryRow {
			continue
		}
		for i, col := range grid.Columns {
			if col.Kind == KindNumeric && col.Mandatory && len(row.Cells[i].Tokens) == 0 {
				row.Incomplete = true
			}
		}
	}
}
