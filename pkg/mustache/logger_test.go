package mustache

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		level     LogLevel
		wantLines []string
	}{
		{LogDebug, []string{"[DEBUG] d", "[INFO] i", "[WARN] w", "[ERROR] e"}},
		{LogInfo, []string{"[INFO] i", "[WARN] w", "[ERROR] e"}},
		{LogWarn, []string{"[WARN] w", "[ERROR] e"}},
		{LogError, []string{"[ERROR] e"}},
		{LogOff, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level)
			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")

			output := buf.String()
			lines := strings.Split(strings.TrimSpace(output), "\n")
			if output == "" {
				lines = nil
			}
			if len(lines) != len(tt.wantLines) {
				t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(tt.wantLines), output)
			}
			for i, want := range tt.wantLines {
				if !strings.HasSuffix(lines[i], want) {
					t.Errorf("line %d = %q, want suffix %q", i, lines[i], want)
				}
			}
		})
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogInfo)

	derived := logger.WithField("b", 2).WithFields(Fields{"a": 1})
	derived.Info("hello %s", "there")

	if !strings.HasSuffix(strings.TrimSpace(buf.String()), "[INFO] hello there a=1 b=2") {
		t.Errorf("output = %q, want sorted fields", buf.String())
	}

	buf.Reset()
	logger.Info("plain")
	if strings.Contains(buf.String(), "a=1") {
		t.Error("WithField modified the parent logger")
	}

	// Derived loggers share the level of their parent.
	logger.SetLevel(LogError)
	buf.Reset()
	derived.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("derived logger wrote %q after parent level change", buf.String())
	}
}

func TestLoggerDebugHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogInfo)

	logger.DebugTemplate("{{x}}", nil)
	logger.DebugLookup("x", 1)
	if buf.Len() != 0 {
		t.Errorf("debug helpers wrote at info level: %q", buf.String())
	}

	logger.SetLevel(LogDebug)
	if !logger.IsDebugMode() {
		t.Fatal("IsDebugMode() = false at debug level")
	}
	logger.DebugTemplate(strings.Repeat("a", 100), map[string]any{"x": 1})
	logger.DebugLookup("x", "v")

	output := buf.String()
	if !strings.Contains(output, "...") {
		t.Errorf("long template not truncated: %q", output)
	}
	if !strings.Contains(output, "Lookup kind=string name=x") {
		t.Errorf("lookup not logged: %q", output)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LogDebug},
		{"INFO", LogInfo},
		{"warn", LogWarn},
		{"error", LogError},
		{"off", LogOff},
		{"nonsense", LogInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestEngineLogsThroughItsLogger(t *testing.T) {
	var buf bytes.Buffer
	engine := newTestEngine(WithLogger(NewLogger(&buf, LogDebug)))

	if _, err := engine.Render("{{>missing}}{{x}}", map[string]any{"x": 1}, PartialMap{"missin": ""}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"Cached parsed template", "Lookup kind=scalar name=x", "Partial not found partial=missing suggestion=missin"} {
		if !strings.Contains(output, want) {
			t.Errorf("log missing %q:\n%s", want, output)
		}
	}
}

func TestNewLoggerNilWriter(t *testing.T) {
	logger := NewLogger(nil, LogDebug)
	logger.Info("discarded")
}
