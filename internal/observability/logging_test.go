package observability

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/Alifast22/formbuilder/internal/config"
)

func TestNewLogger_badLevelFallsBack(t *testing.T) {
	logger, err := NewLogger(config.ObservabilityConfig{LogLevel: "shouty"})
	if err != nil {
		t.Fatalf("NewLogger error: %v", err)
	}
	if !logger.Core().Enabled(zap.InfoLevel) {
		t.Error("unknown level must fall back to info")
	}
}

func TestLoggerFrom(t *testing.T) {
	fallback := zap.NewNop()
	if got := LoggerFrom(context.Background(), fallback); got != fallback {
		t.Error("empty context must return the fallback")
	}

	stored := zap.NewNop()
	ctx := WithLogger(context.Background(), stored)
	if got := LoggerFrom(ctx, fallback); got != stored {
		t.Error("context logger must win over the fallback")
	}
}

func TestRedactData(t *testing.T) {
	data := map[string]any{
		"name":     "Ada",
		"password": "hunter2",
		"nested": map[string]any{
			"token": "abc",
			"note":  "keep",
		},
	}

	got := RedactData(data, []string{"name"})

	if got["name"] != "[REDACTED]" {
		t.Errorf(`got["name"] = %v, caller-specified field must be redacted`, got["name"])
	}
	if got["password"] != "[REDACTED]" {
		t.Errorf(`got["password"] = %v`, got["password"])
	}
	nested := got["nested"].(map[string]any)
	if nested["token"] != "[REDACTED]" || nested["note"] != "keep" {
		t.Errorf("nested = %v", nested)
	}

	// The input must not be mutated.
	if data["password"] != "hunter2" {
		t.Error("RedactData mutated its input")
	}

	if RedactData(nil, nil) != nil {
		t.Error("nil data must stay nil")
	}
}
