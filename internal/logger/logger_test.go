package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected logger to be enabled")
	}
}

func TestNewWithLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(WithLevel(zerolog.ErrorLevel), WithOutput(buf))

	if log.GetLevel() != zerolog.ErrorLevel {
		t.Errorf("Expected error level, got %v", log.GetLevel())
	}

	log.Info().Msg("suppressed")
	if buf.Len() != 0 {
		t.Errorf("Expected info below threshold to be dropped, got: %s", buf.String())
	}

	log.Error().Msg("emitted")
	if !strings.Contains(buf.String(), "emitted") {
		t.Errorf("Expected error output, got: %s", buf.String())
	}
}

func TestNewWithOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(WithOutput(buf))

	log.Info().Msg("console message")
	if !strings.Contains(buf.String(), "console message") {
		t.Errorf("Expected output to contain message, got: %s", buf.String())
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	output := buf.String()
	if output == "" {
		t.Error("Expected log output, got empty string")
	}
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected output to contain 'test message', got: %s", output)
	}
}

func TestWithContext(t *testing.T) {
	log := New()
	ctx := WithContext(context.Background(), log)

	if ctx.Value(LoggerKey) == nil {
		t.Error("Expected logger in context, got nil")
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	testLog := NewWithWriter(buf)
	ctx := WithContext(context.Background(), testLog)

	retrievedLog := FromContext(ctx)
	retrievedLog.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())

	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected default logger to be enabled")
	}
}
