package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectDriftRelocatesNonAmounts(t *testing.T) {
	cfg := testConfig(t)
	page := append(bleedingPage(),
		// long digit run drifted into the cargos x-range on row 2
		tok("89012345678901", 400, 160, 480, 170),
	)
	anchor := anchorTokens(t, page, &cfg)
	grid := fitGrid(t, anchor, &cfg)
	asm := AssembleRows(anchor, grid, &cfg)

	CorrectDrift(asm.Rows, grid, &cfg)

	row := asm.Rows[1]
	cargos := row.Cell("cargos")
	require.NotNil(t, cargos)
	require.Len(t, cargos.Tokens, 1, "only the valid amount stays")
	assert.Equal(t, "250.00", cargos.Tokens[0].Text)

	combined := row.Cell("descripcion")
	require.NotNil(t, combined)
	moved := false
	for _, tk := range combined.Tokens {
		if tk.Text == "89012345678901" {
			moved = true
		}
	}
	assert.True(t, moved, "the digit run lands in the description cell")
}

func TestCorrectDriftIdempotent(t *testing.T) {
	cfg := testConfig(t)
	page := append(bleedingPage(),
		tok("89012345678901", 400, 160, 480, 170),
		tok("GLOSA", 430, 130, 460, 140),
	)
	anchor := anchorTokens(t, page, &cfg)
	grid := fitGrid(t, anchor, &cfg)
	asm := AssembleRows(anchor, grid, &cfg)

	CorrectDrift(asm.Rows, grid, &cfg)
	first := make([]Row, len(asm.Rows))
	for i, r := range asm.Rows {
		first[i] = cloneRow(r)
	}

	CorrectDrift(asm.Rows, grid, &cfg)
	assert.Equal(t, first, asm.Rows, "a second pass changes nothing")
}

func TestCorrectDriftMarksIncomplete(t *testing.T) {
	cfg := testConfig(t)
	page := append(bleedingPage(),
		// primary row identified by its date, mandatory saldo missing
		tok("17/ENE", 40, 200, 70, 210),
		tok("AJUSTE", 120, 200, 160, 210),
	)
	anchor := anchorTokens(t, page, &cfg)
	grid := fitGrid(t, anchor, &cfg)
	asm := AssembleRows(anchor, grid, &cfg)

	CorrectDrift(asm.Rows, grid, &cfg)
	records := FinalizeRows(asm.Rows, grid, &cfg)
	require.Len(t, records, 3)

	rec := records[2]
	assert.True(t, rec.Incomplete)
	assert.Equal(t, "", rec.Value("saldo"), "missing amounts are never defaulted")
	assert.False(t, records[0].Incomplete)
	assert.False(t, records[1].Incomplete)
}

func TestCorrectDriftKeepsContinuationsUnflagged(t *testing.T) {
	cfg := testConfig(t)
	anchor := anchorTokens(t, bleedingPage(), &cfg)
	grid := fitGrid(t, anchor, &cfg)
	asm := AssembleRows(anchor, grid, &cfg)

	CorrectDrift(asm.Rows, grid, &cfg)
	assert.False(t, asm.Rows[2].Incomplete, "mandatory checks apply to primary rows only")
}
