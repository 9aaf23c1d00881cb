package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/layout"
)

// Profile bundles a named layout configuration. Statement formats differ
// only in configuration, never in code paths, so supporting a new bank means
// writing a new profile.
type Profile struct {
	Name   string        `yaml:"name"`
	Layout layout.Config `yaml:"layout"`
}

// DefaultProfile returns the built-in BBVA movement-table profile.
func DefaultProfile() Profile {
	cfg := layout.NewConfig(
		layout.WithAnchorTitle("Detalle de Movimientos Realizados"),
		layout.WithStopMarkers("Total de Movimientos", "SALDO TOTAL"),
		layout.WithReferencePrefix("Referencia"),
		layout.WithDatePattern(`^\d{2}/[A-Z]{3}$`),
		layout.WithNumericLocale(".", ","),
		layout.WithColumns(
			layout.ColumnSpec{Name: "oper", Kind: layout.KindDateLike, Labels: []string{"OPER"}},
			layout.ColumnSpec{Name: "liq", Kind: layout.KindDateLike, Labels: []string{"LIQ"}},
			layout.ColumnSpec{Name: "descripcion", Kind: layout.KindFreeText, Labels: []string{"DESCRIPCIÓN", "DESCRIPCION"}},
			layout.ColumnSpec{Name: "referencia", Kind: layout.KindReference, Labels: []string{"REFERENCIA"}},
			layout.ColumnSpec{Name: "cargos", Kind: layout.KindNumeric, Labels: []string{"CARGOS"}},
			layout.ColumnSpec{Name: "abonos", Kind: layout.KindNumeric, Labels: []string{"ABONOS"}},
			layout.ColumnSpec{Name: "operacion", Kind: layout.KindNumeric, Mandatory: true, Labels: []string{"OPERACIÓN", "OPERACION"}},
			layout.ColumnSpec{Name: "liquidacion", Kind: layout.KindNumeric, Mandatory: true, Labels: []string{"LIQUIDACIÓN", "LIQUIDACION"}},
		),
	)
	return Profile{Name: "bbva", Layout: cfg}
}

// LoadProfile reads a YAML profile from disk. Fields absent from the file
// keep their default-profile values.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes a YAML profile, layering it over the defaults.
func ParseProfile(data []byte) (Profile, error) {
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := p.Layout.Normalize(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile %q: %w", p.Name, err)
	}
	return p, nil
}
