package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()

	assert.Equal(t, "bbva", p.Name)
	assert.Equal(t, "Detalle de Movimientos Realizados", p.Layout.AnchorTitle)
	assert.Equal(t, "Referencia", p.Layout.ReferencePrefix)
	require.Len(t, p.Layout.Columns, 8)
	assert.Equal(t, 4, p.Layout.NumericCount())

	require.NoError(t, p.Layout.Normalize())
	assert.True(t, p.Layout.MatchesDate("15/ENE"))
	assert.False(t, p.Layout.MatchesDate("15/01"))
	assert.True(t, p.Layout.IsAmount("1,234.56"))
}

func TestParseProfileLayersOverDefaults(t *testing.T) {
	p, err := ParseProfile([]byte(`
name: other-bank
layout:
  anchor_title: "Movimientos del Periodo"
`))
	require.NoError(t, err)

	assert.Equal(t, "other-bank", p.Name)
	assert.Equal(t, "Movimientos del Periodo", p.Layout.AnchorTitle)
	assert.Equal(t, "Referencia", p.Layout.ReferencePrefix, "unset fields keep defaults")
	assert.Len(t, p.Layout.Columns, 8)
}

func TestParseProfileInvalidDatePattern(t *testing.T) {
	_, err := ParseProfile([]byte(`
layout:
  date_pattern: "(["
`))
	require.Error(t, err)
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: from-disk`), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-disk", p.Name)
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestDefaultProfileMandatoryColumns(t *testing.T) {
	p := DefaultProfile()

	mandatory := map[string]bool{}
	for _, spec := range p.Layout.Columns {
		if spec.Mandatory {
			mandatory[spec.Name] = true
		}
	}
	assert.True(t, mandatory["operacion"])
	assert.True(t, mandatory["liquidacion"])
	assert.False(t, mandatory["cargos"], "a movement has either a charge or a credit")
	assert.False(t, mandatory["abonos"])
}
