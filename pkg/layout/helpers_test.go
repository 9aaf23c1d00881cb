package layout

import "testing"

// tok builds a page-1 token with full confidence.
func tok(text string, x0, y0, x1, y1 float64) Token {
	return Token{Text: text, X0: x0, Y0: y0, X1: x1, Y1: y1, Page: 1, Confidence: 1}
}

// testConfig is a five-column statement layout: one date column, a
// description, a reference, and two numeric columns with a mandatory
// balance.
func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := NewConfig(
		WithAnchorTitle("Detalle de Movimientos Realizados"),
		WithStopMarkers("Total de Movimientos"),
		WithReferencePrefix("Referencia"),
		WithDatePattern(`^\d{2}/[A-Z]{3}$`),
		WithColumns(
			ColumnSpec{Name: "oper", Kind: KindDateLike, Labels: []string{"OPER"}},
			ColumnSpec{Name: "descripcion", Kind: KindFreeText, Labels: []string{"DESCRIPCION"}},
			ColumnSpec{Name: "referencia", Kind: KindReference, Labels: []string{"REFERENCIA"}},
			ColumnSpec{Name: "cargos", Kind: KindNumeric, Labels: []string{"CARGOS"}},
			ColumnSpec{Name: "saldo", Kind: KindNumeric, Mandatory: true, Labels: []string{"SALDO"}},
		),
	)
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize config: %v", err)
	}
	return cfg
}

// titleAndHeaders is the shared top of every fixture page: the section title
// line followed by the column label row.
func titleAndHeaders() []Token {
	return []Token{
		tok("Detalle", 50, 70, 85, 80),
		tok("de", 90, 70, 100, 80),
		tok("Movimientos", 105, 70, 165, 80),
		tok("Realizados", 170, 70, 220, 80),

		tok("OPER", 40, 100, 65, 110),
		tok("DESCRIPCION", 120, 100, 185, 110),
		tok("REFERENCIA", 260, 100, 320, 110),
		tok("CARGOS", 400, 100, 435, 110),
		tok("SALDO", 500, 100, 530, 110),
	}
}

// bleedingPage is a two-transaction page whose masked reference run extends
// into the numeric zone. The second transaction carries a trailing
// description-only line.
func bleedingPage() []Token {
	page := titleAndHeaders()
	page = append(page,
		// transaction 1
		tok("15/ENE", 40, 130, 70, 140),
		tok("PAGO", 120, 130, 150, 140),
		tok("TARJETA", 155, 130, 195, 140),
		tok("Referencia", 260, 130, 330, 140),
		tok("*****12345678", 335, 130, 430, 140),
		tok("1,500.00", 395, 130, 440, 140),
		tok("7,200.00", 495, 130, 540, 140),

		// transaction 2
		tok("16/ENE", 40, 160, 70, 170),
		tok("SPEI", 120, 160, 145, 170),
		tok("RECIBIDO", 150, 160, 190, 170),
		tok("250.00", 400, 160, 435, 170),
		tok("6,950.00", 495, 160, 540, 170),

		// continuation of transaction 2
		tok("COMISION", 120, 180, 160, 190),
	)
	return page
}

// cleanPage keeps every reference token inside its own column.
func cleanPage() []Token {
	page := titleAndHeaders()
	page = append(page,
		tok("15/ENE", 40, 130, 70, 140),
		tok("PAGO", 120, 130, 150, 140),
		tok("TARJETA", 155, 130, 195, 140),
		tok("Referencia", 260, 130, 310, 140),
		tok("0123456", 315, 130, 355, 140),
		tok("1,500.00", 395, 130, 440, 140),
		tok("7,200.00", 495, 130, 540, 140),

		tok("16/ENE", 40, 160, 70, 170),
		tok("SPEI", 120, 160, 145, 170),
		tok("RECIBIDO", 150, 160, 190, 170),
		tok("250.00", 400, 160, 435, 170),
		tok("6,950.00", 495, 160, 540, 170),
	)
	return page
}

// anchorTokens runs region filtering and returns the anchor band.
func anchorTokens(t *testing.T, page []Token, cfg *Config) []Token {
	t.Helper()
	split, err := FilterRegions(page, cfg)
	if err != nil {
		t.Fatalf("filter regions: %v", err)
	}
	return split.Anchor
}

// fitGrid classifies the anchor band and builds its grid.
func fitGrid(t *testing.T, anchor []Token, cfg *Config) Grid {
	t.Helper()
	mode := Classify(anchor, cfg)
	grid, err := BuildGrid(anchor, mode, cfg, 1)
	if err != nil {
		t.Fatalf("build grid: %v", err)
	}
	return grid
}
