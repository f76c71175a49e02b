package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/samvad-hq/samvad-market-pulse/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitSetsPackageLogger(t *testing.T) {
	t.Cleanup(func() { S = nil })

	sugar, err := Init(&config.Config{AppName: "test", LogLevel: "debug"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if sugar == nil || S != sugar {
		t.Fatalf("expected package logger to be set")
	}
	InfoObj("hello", "meta", map[string]any{"k": "v"})
}

func TestEnsureReturnsNopForNil(t *testing.T) {
	log := Ensure(nil)
	if _, ok := log.(*NopLogger); !ok {
		t.Fatalf("expected NopLogger, got %T", log)
	}
	log.ErrorObj("ignored", "k", nil)
}
