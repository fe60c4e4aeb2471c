package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("info", "text", &buf)

	logger.Info("battery sampled", "percentage", 83.5)

	out := buf.String()
	if !strings.Contains(out, "battery sampled") {
		t.Errorf("expected message in output, got: %s", out)
	}
	if !strings.Contains(out, "percentage=83.5") {
		t.Errorf("expected attribute in output, got: %s", out)
	}
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("info", "json", &buf)

	logger.Info("battery sampled", "runner", "ups0")

	out := buf.String()
	if !strings.Contains(out, `"msg":"battery sampled"`) {
		t.Errorf("expected JSON msg field, got: %s", out)
	}
	if !strings.Contains(out, `"runner":"ups0"`) {
		t.Errorf("expected JSON attribute, got: %s", out)
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("warn", "text", &buf)

	logger.Info("filtered")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "filtered") {
		t.Errorf("INFO should be filtered at warn level, got: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("WARN should pass at warn level, got: %s", out)
	}
}

func TestNewWithWriter_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("loud", "text", &buf)

	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("DEBUG should be filtered at default info level, got: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("INFO should pass at default info level, got: %s", out)
	}
}

func TestNewWithWriter_ComponentChild(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("debug", "text", &buf)
	child := logger.With("component", "schedule")

	child.Debug("tick", "task", "morning-water")

	out := buf.String()
	if !strings.Contains(out, "component=schedule") {
		t.Errorf("expected component attribute, got: %s", out)
	}
	if !strings.Contains(out, "task=morning-water") {
		t.Errorf("expected task attribute, got: %s", out)
	}
}
