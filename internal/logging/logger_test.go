package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	previous := logger
	SetLogger(zap.New(core))
	t.Cleanup(func() { logger = previous })
	return logs
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestInitializeSilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	previous := logger
	t.Cleanup(func() { logger = previous })

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger should be a no-op when no level is configured")
	}
}

func TestInitializeFromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")
	previous := logger
	t.Cleanup(func() { logger = previous })

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	core := GetLogger().Core()
	if !core.Enabled(zapcore.WarnLevel) || core.Enabled(zapcore.InfoLevel) {
		t.Error("level should come from the environment")
	}
}

func TestLogStateTransition(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	LogStateTransition("disconnected", "connecting", `connecting to "home"`)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["from"] != "disconnected" || fields["to"] != "connecting" {
		t.Errorf("fields = %v", fields)
	}
}

func TestLogRawBytes(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	LogRawBytes("request", []byte("GET / HTTP/1.0\r\n"))

	fields := logs.All()[0].ContextMap()
	if fields["ascii"] != "GET / HTTP/1.0.." {
		t.Errorf("ascii = %q", fields["ascii"])
	}
	if fields["hex"] != "474554202f20485454502f312e300d0a" {
		t.Errorf("hex = %q", fields["hex"])
	}
}

func TestRawDumpLimit(t *testing.T) {
	data := []byte(strings.Repeat("a", rawDumpLimit+10))

	if got := asciiDump(data); len(got) != rawDumpLimit {
		t.Errorf("asciiDump length = %d, want %d", len(got), rawDumpLimit)
	}
	if got := hexDump(data); !strings.HasSuffix(got, "...") || len(got) != rawDumpLimit*2+3 {
		t.Errorf("hexDump length = %d", len(got))
	}
	if hexDump(nil) != "" || asciiDump(nil) != "" {
		t.Error("empty input should dump as empty")
	}
}
