package layout

import "regexp"

// Config carries the per-run reconstruction settings. It is loaded once at
// startup and shared read-only across pages.
type Config struct {
	// Columns lists the expected columns in left-to-right order.
	Columns []ColumnSpec `yaml:"columns"`

	// AnchorTitle is the section title whose line marks the top of the data
	// region, e.g. "Detalle de Movimientos Realizados".
	AnchorTitle string `yaml:"anchor_title"`
	// StopMarkers terminate the data region early when one of them appears
	// below the anchor title (totals and subtotal lines).
	StopMarkers []string `yaml:"stop_markers"`
	// HeaderCutoff and FooterCutoff are absolute y thresholds. When zero the
	// region filter derives both from AnchorTitle and StopMarkers instead.
	HeaderCutoff float64 `yaml:"header_cutoff"`
	FooterCutoff float64 `yaml:"footer_cutoff"`

	// ReferencePrefix is the literal prefix of reference tokens ("Referencia").
	ReferencePrefix string `yaml:"reference_prefix"`
	// DatePattern matches date tokens, e.g. `^\d{2}/[A-Z]{3}$`.
	DatePattern string `yaml:"date_pattern"`

	// DecimalSeparator and ThousandsSeparator define the numeric locale.
	DecimalSeparator   string `yaml:"decimal_separator"`
	ThousandsSeparator string `yaml:"thousands_separator"`
	// MaxAmountDigits bounds the integer digits of a plausible amount; longer
	// pure digit runs in a numeric column are treated as drifted references.
	MaxAmountDigits int `yaml:"max_amount_digits"`

	// RowTolerance is the y-banding window. Zero derives it from the median
	// token height of the page.
	RowTolerance float64 `yaml:"row_tolerance"`

	// OverlapFraction is the classifier threshold: a reference token whose
	// overlap with the numeric zone reaches this fraction of its own width is
	// an unambiguous bleed. Any smaller non-zero overlap is ambiguous and
	// also classified Bleeding, which is the stricter reading.
	OverlapFraction float64 `yaml:"overlap_fraction"`

	// MaxIterations caps the numeric-column clustering loop.
	MaxIterations int `yaml:"max_iterations"`
	// MinSeparation is the minimum x distance between adjacent fitted numeric
	// column centers; failure to separate is a GridFitFailure.
	MinSeparation float64 `yaml:"min_separation"`

	datePattern *regexp.Regexp
}

// Option mutates a Config.
type Option func(*Config)

// WithColumns replaces the expected column set.
func WithColumns(cols ...ColumnSpec) Option {
	return func(c *Config) { c.Columns = cols }
}

// WithAnchorTitle sets the data-region anchor title.
func WithAnchorTitle(title string) Option {
	return func(c *Config) { c.AnchorTitle = title }
}

// WithStopMarkers sets the data-region stop markers.
func WithStopMarkers(markers ...string) Option {
	return func(c *Config) { c.StopMarkers = markers }
}

// WithCutoffs sets absolute header/footer y thresholds.
func WithCutoffs(header, footer float64) Option {
	return func(c *Config) {
		c.HeaderCutoff = header
		c.FooterCutoff = footer
	}
}

// WithReferencePrefix sets the reference literal prefix.
func WithReferencePrefix(prefix string) Option {
	return func(c *Config) { c.ReferencePrefix = prefix }
}

// WithDatePattern sets the date token pattern.
func WithDatePattern(pattern string) Option {
	return func(c *Config) { c.DatePattern = pattern }
}

// WithNumericLocale sets the decimal and thousands separators.
func WithNumericLocale(decimal, thousands string) Option {
	return func(c *Config) {
		c.DecimalSeparator = decimal
		c.ThousandsSeparator = thousands
	}
}

// WithRowTolerance sets the row-banding window.
func WithRowTolerance(tol float64) Option {
	return func(c *Config) { c.RowTolerance = tol }
}

// NewConfig builds a config from options on top of sane zero defaults.
func NewConfig(opts ...Option) Config {
	c := Config{
		DecimalSeparator:   ".",
		ThousandsSeparator: ",",
		MaxAmountDigits:    10,
		OverlapFraction:    0.3,
		MaxIterations:      25,
		MinSeparation:      20,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Normalize fills unset tuning fields with their defaults and compiles the
// date pattern. It must be called once before the config is used.
func (c *Config) Normalize() error {
	if c.DecimalSeparator == "" {
		c.DecimalSeparator = "."
	}
	if c.ThousandsSeparator == "" {
		c.ThousandsSeparator = ","
	}
	if c.MaxAmountDigits == 0 {
		c.MaxAmountDigits = 10
	}
	if c.OverlapFraction == 0 {
		c.OverlapFraction = 0.3
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 25
	}
	if c.MinSeparation == 0 {
		c.MinSeparation = 20
	}
	if c.DatePattern != "" {
		re, err := regexp.Compile(c.DatePattern)
		if err != nil {
			return err
		}
		c.datePattern = re
	}
	return nil
}

// MatchesDate reports whether a token text matches the configured date pattern.
func (c *Config) MatchesDate(text string) bool {
	if c.datePattern == nil {
		return false
	}
	return c.datePattern.MatchString(text)
}

// NumericCount returns the number of expected numeric columns.
func (c *Config) NumericCount() int {
	n := 0
	for _, col := range c.Columns {
		if col.Kind == KindNumeric {
			n++
		}
	}
	return n
}
