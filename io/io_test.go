package archio

import (
	"bytes"
	"strings"
	"testing"
)

func TestIOManager_ColorOverrides(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "")
	m := New().WithOut(&bytes.Buffer{})
	if m.SupportsColor() {
		t.Fatalf("non-terminal output should not support color")
	}
	if !m.ForceColor().SupportsColor() {
		t.Fatalf("ForceColor should enable")
	}
	if m.NoColor().SupportsColor() {
		t.Fatalf("NoColor should disable")
	}

	t.Setenv("FORCE_COLOR", "1")
	if !m.ColorAuto().SupportsColor() {
		t.Fatalf("FORCE_COLOR should enable")
	}
	t.Setenv("NO_COLOR", "1")
	if m.SupportsColor() {
		t.Fatalf("NO_COLOR should win over FORCE_COLOR")
	}
}

func TestIOManager_WidthFallback(t *testing.T) {
	t.Setenv("COLUMNS", "101")
	m := New().WithOut(&bytes.Buffer{})
	if w := m.Width(); w != 101 {
		t.Fatalf("want 101, got %d", w)
	}
	t.Setenv("COLUMNS", "")
	if w := m.Width(); w != 80 {
		t.Fatalf("want 80, got %d", w)
	}
}

func TestIOManager_TerminalDetection(t *testing.T) {
	m := New().WithOut(&bytes.Buffer{})
	if m.IsTTY() {
		t.Fatalf("buffer is not a terminal")
	}
	if m.WithIn(strings.NewReader("")).IsInteractive() {
		t.Fatalf("reader input is not interactive")
	}
}

func TestLogger_LevelsAndStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	m := New().WithOut(&out).WithErr(&errOut).NoColor()
	l := NewLogger(m)

	l.Debug("hidden %d", 1)
	l.Info("hello %s", "world")
	l.Warning("careful")
	l.Error("broken")

	if strings.Contains(out.String(), "hidden") {
		t.Errorf("debug should be filtered at info level: %q", out.String())
	}
	if got := out.String(); got != "[INFO] hello world\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := errOut.String(); got != "[WARN] careful\n[ERROR] broken\n" {
		t.Errorf("stderr = %q", got)
	}

	out.Reset()
	l.WithLevel(LevelDebug).WithFormat(LogFormatPlain).Debug("trace")
	if got := out.String(); got != "trace\n" {
		t.Errorf("plain debug = %q", got)
	}

	out.Reset()
	l.WithLevel(LevelOff).Error("nothing")
	if out.Len() != 0 {
		t.Errorf("off level should write nothing")
	}
}

func TestLogger_Color(t *testing.T) {
	var out bytes.Buffer
	m := New().WithOut(&out).ForceColor()
	NewLogger(m).Info("colored")
	if !strings.Contains(out.String(), "\x1b[") {
		t.Fatalf("expected ANSI sequence, got %q", out.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"WARN", LevelWarning, true},
		{" error ", LevelError, true},
		{"off", LevelOff, true},
		{"loud", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
