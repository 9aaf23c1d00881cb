package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/internal/logger"
	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/layout"
	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/pipeline"
	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/tokens"
	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/validate"
)

// recordJSON is the flat output shape: one object per transaction with
// column values keyed by column name.
type recordJSON struct {
	Page       int               `json:"page"`
	Incomplete bool              `json:"incomplete,omitempty"`
	Values     map[string]string `json:"values"`
}

func main() {
	profilePath := flag.String("profile", "", "YAML layout profile (default: built-in BBVA profile)")
	workers := flag.Int("workers", 4, "concurrent page workers")
	timeout := flag.Duration("page-timeout", 30*time.Second, "per-page processing timeout")
	check := flag.Bool("validate", false, "compare records against source tokens and report discrepancies")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: extract [flags] <statement.pdf>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := logger.New(logger.WithLevel(level))

	profile := pipeline.DefaultProfile()
	if *profilePath != "" {
		var err error
		profile, err = pipeline.LoadProfile(*profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load profile")
		}
	}

	src, err := tokens.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open statement")
	}
	defer src.Close()

	ctx := context.Background()
	pages, err := tokens.Collect(ctx, src)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to extract tokens")
	}

	pageTokens := make([][]layout.Token, len(pages))
	for i, p := range pages {
		pageTokens[i] = p.Tokens
	}

	proc, err := pipeline.New(profile.Layout,
		pipeline.WithWorkers(*workers),
		pipeline.WithPageTimeout(*timeout),
		pipeline.WithLogger(log),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	res := proc.Run(ctx, pageTokens)
	for _, pe := range res.Errors {
		log.Warn().Int("page", pe.Page).Str("stage", string(pe.Stage)).
			Err(pe.Err).Msg("page skipped")
	}

	if *check {
		validator := validate.New()
		for i, p := range pages {
			report, err := validator.Validate(ctx, res.Records, validate.SourcePage{
				Number: i + 1,
				Width:  p.Width,
				Height: p.Height,
				Tokens: p.Tokens,
			})
			if err != nil {
				log.Warn().Int("page", i+1).Err(err).Msg("validation failed")
				continue
			}
			for _, d := range report.DataAffecting() {
				log.Error().Int("page", d.Page).Str("column", d.Column).
					Str("expected", d.Expected).Str("observed", d.Observed).
					Msg("record does not match source")
			}
		}
	}

	out := make([]recordJSON, 0, len(res.Records))
	for _, rec := range res.Records {
		values := make(map[string]string, len(rec.Fields))
		for _, f := range rec.Fields {
			values[f.Column] = f.Text
		}
		out = append(out, recordJSON{Page: rec.Page, Incomplete: rec.Incomplete, Values: values})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("failed to encode records")
	}
}
