package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterRegionsSplitsAtAnchorTitle(t *testing.T) {
	cfg := testConfig(t)
	page := append([]Token{
		tok("BBVA", 40, 20, 80, 32),
		tok("Estado", 40, 40, 75, 50),
		tok("de", 80, 40, 92, 50),
		tok("Cuenta", 96, 40, 130, 50),
	}, bleedingPage()...)

	split, err := FilterRegions(page, &cfg)
	require.NoError(t, err)

	for _, tk := range split.Header {
		assert.Less(t, tk.BBox().CenterY(), 80.0, "header token %q below title line", tk.Text)
	}
	assert.Len(t, split.Header, 8, "bank block plus title line")
	assert.Empty(t, split.Footer)

	texts := map[string]bool{}
	for _, tk := range split.Anchor {
		texts[tk.Text] = true
	}
	assert.True(t, texts["15/ENE"])
	assert.True(t, texts["7,200.00"])
	assert.False(t, texts["BBVA"])
	assert.False(t, texts["Detalle"])
}

func TestFilterRegionsStopMarker(t *testing.T) {
	cfg := testConfig(t)
	page := append(bleedingPage(),
		tok("Total", 120, 700, 150, 710),
		tok("de", 155, 700, 167, 710),
		tok("Movimientos", 170, 700, 230, 710),
		tok("45", 400, 700, 415, 710),
		tok("Pagina", 40, 760, 75, 770),
	)

	split, err := FilterRegions(page, &cfg)
	require.NoError(t, err)

	assert.Equal(t, 700.0, split.Regions.Footer.Top, "the marker line itself is footer")
	footer := map[string]bool{}
	for _, tk := range split.Footer {
		footer[tk.Text] = true
	}
	assert.True(t, footer["Pagina"])
	assert.True(t, footer["Total"])
	assert.True(t, footer["45"])
	for _, tk := range split.Anchor {
		assert.Less(t, tk.BBox().CenterY(), 700.0)
	}
}

func TestFilterRegionsMissingAnchorTitle(t *testing.T) {
	cfg := testConfig(t)
	page := []Token{
		tok("15/ENE", 40, 130, 70, 140),
		tok("250.00", 400, 130, 435, 140),
	}

	_, err := FilterRegions(page, &cfg)
	require.ErrorIs(t, err, ErrRegionNotFound)
}

func TestFilterRegionsContinuation(t *testing.T) {
	cfg := testConfig(t)
	page := []Token{
		tok("COMISION", 120, 40, 160, 50),
		tok("16/ENE", 40, 70, 70, 80),
		tok("250.00", 400, 70, 435, 80),
	}

	split, err := FilterRegionsContinuation(page, &cfg)
	require.NoError(t, err)
	assert.Empty(t, split.Header, "continuation pages start at the top")
	assert.Len(t, split.Anchor, 3)
}

func TestFilterRegionsAbsoluteCutoffs(t *testing.T) {
	cfg := testConfig(t)
	cfg.AnchorTitle = ""
	cfg.HeaderCutoff = 100
	cfg.FooterCutoff = 200

	page := []Token{
		tok("above", 40, 50, 80, 60),
		tok("inside", 40, 150, 80, 160),
		tok("below", 40, 250, 80, 260),
	}
	split, err := FilterRegions(page, &cfg)
	require.NoError(t, err)
	require.Len(t, split.Anchor, 1)
	assert.Equal(t, "inside", split.Anchor[0].Text)
	require.Len(t, split.Header, 1)
	require.Len(t, split.Footer, 1)
}

func TestGroupIntoLines(t *testing.T) {
	toks := []Token{
		tok("b", 100, 10, 120, 20),
		tok("a", 40, 11, 60, 21),
		tok("c", 40, 40, 60, 50),
	}
	lines := GroupIntoLines(toks, 5)
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0][0].Text, "lines are ordered left to right")
	assert.Equal(t, "b", lines[0][1].Text)
	assert.Equal(t, "c", lines[1][0].Text)
}

func TestMedianTokenHeight(t *testing.T) {
	toks := []Token{
		tok("a", 0, 0, 10, 10),
		tok("b", 0, 0, 10, 12),
		tok("c", 0, 0, 10, 30),
	}
	assert.Equal(t, 12.0, MedianTokenHeight(toks))
}
