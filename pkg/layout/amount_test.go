package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAmount(t *testing.T) {
	cfg := testConfig(t)

	cases := []struct {
		text string
		want bool
	}{
		{"7,200.00", true},
		{"250.00", true},
		{"-1,500.00", true},
		{"1,234,567.89", true},
		{"0.00", true},
		{"7200.00", true},
		{"7,200", false},
		{"7.200,00", false},
		{"1234,567.89", false},
		{"12.3", false},
		{"0123456789", false},
		{"Referencia", false},
		{"", false},
		{"  250.00  ", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, cfg.IsAmount(tc.text), "IsAmount(%q)", tc.text)
	}
}

func TestIsAmountEuropeanLocale(t *testing.T) {
	cfg := NewConfig(WithNumericLocale(",", "."))
	if err := cfg.Normalize(); err != nil {
		t.Fatal(err)
	}

	assert.True(t, cfg.IsAmount("7.200,00"))
	assert.False(t, cfg.IsAmount("7,200.00"))
}

func TestNormalizeAmount(t *testing.T) {
	cfg := testConfig(t)

	got, ok := cfg.NormalizeAmount("7,200.00")
	assert.True(t, ok)
	assert.Equal(t, "7200.00", got)

	got, ok = cfg.NormalizeAmount("-1,234,567.89")
	assert.True(t, ok)
	assert.Equal(t, "-1234567.89", got)

	_, ok = cfg.NormalizeAmount("not an amount")
	assert.False(t, ok)
}

func TestIsReference(t *testing.T) {
	cfg := testConfig(t)

	assert.True(t, cfg.IsReference("Referencia"))
	assert.True(t, cfg.IsReference("Referencia0482"))
	assert.True(t, cfg.IsReference("******6929"))
	assert.True(t, cfg.IsReference("*****12345678"))

	assert.False(t, cfg.IsReference("REFERENCIA"))
	assert.False(t, cfg.IsReference("***12"))
	assert.False(t, cfg.IsReference("0123456789"))
	assert.False(t, cfg.IsReference("PAGO"))
	assert.False(t, cfg.IsReference(""))
}

func TestIsDigitRun(t *testing.T) {
	cfg := testConfig(t)

	assert.True(t, cfg.isDigitRun("89012345678901"))
	assert.False(t, cfg.isDigitRun("0123456789"), "runs within the amount magnitude are not flagged")
	assert.False(t, cfg.isDigitRun("8901234567890a"))
	assert.False(t, cfg.isDigitRun("250.00"))
}
