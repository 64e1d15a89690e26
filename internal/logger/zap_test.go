package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		DebugLevel: zapcore.DebugLevel,
		InfoLevel:  zapcore.InfoLevel,
		WarnLevel:  zapcore.WarnLevel,
		ErrorLevel: zapcore.ErrorLevel,
		"WARN":     zapcore.WarnLevel,
		"verbose":  defaultZapLevel,
		"":         defaultZapLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Fatalf("toZapLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewZapLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := newZapLogger(Options{Level: WarnLevel, Format: FormatJSON}, &buf)

	l.Infow("dropped")
	l.With("session_id", "s1").Warnw("telemetry_fetch_failed", "consecutive", 2)
	_ = l.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 line above warn level, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["msg"] != "telemetry_fetch_failed" || entry["session_id"] != "s1" || entry["consecutive"] != float64(2) {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewZapLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	l := newZapLogger(Options{Level: DebugLevel}, &buf)
	l.Debugw("telemetry_tick_skipped", "reason", "fetch outstanding")
	_ = l.Sync()

	out := buf.String()
	if !strings.Contains(out, "DEBUG") || !strings.Contains(out, "telemetry_tick_skipped") {
		t.Fatalf("unexpected console output: %q", out)
	}
}

func TestNop_With(t *testing.T) {
	l := Nop().With("session_id", "s1")
	if l == nil || l.SugaredLogger == nil {
		t.Fatalf("expected usable logger")
	}
	l.Infow("discarded", "k", "v")
}
