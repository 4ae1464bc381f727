package corelog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerWritesAboveLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})

	l.Info("should not appear")
	l.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatal("info message should have been filtered")
	}
	if !strings.Contains(out, "should appear") {
		t.Fatal("warn message should have been written")
	}
}

func TestWithComponentTagsRecords(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Output: &buf}).WithComponent("gapbuffer")

	l.Debug("compacted")

	if !strings.Contains(buf.String(), "component=gapbuffer") {
		t.Fatalf("expected component field in output, got %q", buf.String())
	}
}

func TestDiscardDropsEverything(t *testing.T) {
	l := Discard()
	l.Error("this should not panic or write anywhere")
}
