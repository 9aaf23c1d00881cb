package layout

import (
	"regexp"
	"strings"
)

// maskedRefPattern matches masked reference runs like "******6929". These are
// routed to the reference field even without the literal prefix.
var maskedRefPattern = regexp.MustCompile(`\*{4,}\d+`)

// amountPattern builds the currency fingerprint for the configured locale:
// an optional sign, 1-3 leading digits, zero or more thousands groups, and
// exactly two decimal digits.
func amountPattern(decimal, thousands string) *regexp.Regexp {
	return regexp.MustCompile(
		`^-?\d{1,3}(` + regexp.QuoteMeta(thousands) + `\d{3})*` +
			regexp.QuoteMeta(decimal) + `\d{2}$`)
}

// IsAmount reports whether text parses as a signed, currency-formatted
// amount under the config's locale.
func (c *Config) IsAmount(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	return amountPattern(c.DecimalSeparator, c.ThousandsSeparator).MatchString(text)
}

// NormalizeAmount strips thousands separators and normalizes the decimal
// separator to a period, returning ok=false when the text is not a valid
// amount. The literal field text in emitted records is never rewritten; this
// is for numeric comparison and validation only.
func (c *Config) NormalizeAmount(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !c.IsAmount(text) {
		return "", false
	}
	out := strings.ReplaceAll(text, c.ThousandsSeparator, "")
	if c.DecimalSeparator != "." {
		out = strings.ReplaceAll(out, c.DecimalSeparator, ".")
	}
	return out, true
}

// IsReference reports whether a token text belongs to the reference field:
// either it starts with the configured literal prefix or it is a masked
// digit run.
func (c *Config) IsReference(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if c.ReferencePrefix != "" && strings.HasPrefix(text, c.ReferencePrefix) {
		return true
	}
	return maskedRefPattern.MatchString(text)
}

// isDigitRun reports whether text is an unformatted digit run longer than
// the configured amount magnitude. Long runs inside numeric columns are
// drifted reference numbers, not amounts.
func (c *Config) isDigitRun(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) <= c.MaxAmountDigits {
		return false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
