package statements_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	statements "github.com/bambooheng/finish-bbva-pdf-parser-without-detail"
)

func tk(page int, text string, x0, y0, x1, y1 float64) statements.Token {
	return statements.Token{Text: text, X0: x0, Y0: y0, X1: x1, Y1: y1, Page: page, Confidence: 1}
}

func statementConfig() statements.Config {
	return statements.NewConfig(
		statements.WithAnchorTitle("Detalle de Movimientos Realizados"),
		statements.WithStopMarkers("Total de Movimientos"),
		statements.WithReferencePrefix("Referencia"),
		statements.WithDatePattern(`^\d{2}/[A-Z]{3}$`),
		statements.WithColumns(
			statements.ColumnSpec{Name: "oper", Kind: statements.KindDateLike, Labels: []string{"OPER"}},
			statements.ColumnSpec{Name: "descripcion", Kind: statements.KindFreeText, Labels: []string{"DESCRIPCION"}},
			statements.ColumnSpec{Name: "referencia", Kind: statements.KindReference, Labels: []string{"REFERENCIA"}},
			statements.ColumnSpec{Name: "cargos", Kind: statements.KindNumeric, Labels: []string{"CARGOS"}},
			statements.ColumnSpec{Name: "saldo", Kind: statements.KindNumeric, Mandatory: true, Labels: []string{"SALDO"}},
		),
	)
}

func statementPage() []statements.Token {
	return []statements.Token{
		tk(1, "Detalle", 50, 70, 85, 80),
		tk(1, "de", 90, 70, 100, 80),
		tk(1, "Movimientos", 105, 70, 165, 80),
		tk(1, "Realizados", 170, 70, 220, 80),

		tk(1, "OPER", 40, 100, 65, 110),
		tk(1, "DESCRIPCION", 120, 100, 185, 110),
		tk(1, "REFERENCIA", 260, 100, 320, 110),
		tk(1, "CARGOS", 400, 100, 435, 110),
		tk(1, "SALDO", 500, 100, 530, 110),

		tk(1, "15/ENE", 40, 130, 70, 140),
		tk(1, "PAGO", 120, 130, 150, 140),
		tk(1, "TARJETA", 155, 130, 195, 140),
		tk(1, "Referencia", 260, 130, 330, 140),
		tk(1, "*****12345678", 335, 130, 430, 140),
		tk(1, "1,500.00", 395, 130, 440, 140),
		tk(1, "7,200.00", 495, 130, 540, 140),
	}
}

func TestReconstruct(t *testing.T) {
	records, pageErrs := statements.Reconstruct([][]statements.Token{statementPage()}, statementConfig())
	require.Empty(t, pageErrs)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "15/ENE", rec.Value("oper"))
	assert.Equal(t, "PAGO TARJETA", rec.Value("descripcion"))
	assert.Equal(t, "Referencia *****12345678", rec.Value("referencia"))
	assert.Equal(t, "1,500.00", rec.Value("cargos"))
	assert.Equal(t, "7,200.00", rec.Value("saldo"))
}

func TestReconstructReportsPageErrors(t *testing.T) {
	garbage := []statements.Token{tk(1, "nothing", 40, 40, 80, 50)}

	records, pageErrs := statements.Reconstruct([][]statements.Token{garbage}, statementConfig())
	assert.Empty(t, records)
	require.Len(t, pageErrs, 1)
	assert.Equal(t, 1, pageErrs[0].Page)
}

func TestValidateAgainstSourceTokens(t *testing.T) {
	cfg := statementConfig()
	records, pageErrs := statements.Reconstruct([][]statements.Token{statementPage()}, cfg)
	require.Empty(t, pageErrs)

	report, err := statements.Validate(records, statements.SourcePage{
		Number: 1,
		Tokens: statementPage(),
	})
	require.NoError(t, err)
	assert.True(t, report.Clean())
}

func TestDefaultProfileReconstructs(t *testing.T) {
	profile := statements.DefaultProfile()
	assert.Equal(t, "bbva", profile.Name)
	assert.NotEmpty(t, profile.Layout.Columns)
}
