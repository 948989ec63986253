package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew_WritesToStdoutAndFile(t *testing.T) {
	var stdout bytes.Buffer
	file := filepath.Join(t.TempDir(), "fileshare.log")

	log, closer, err := New(Options{Level: "debug", File: file, Stdout: &stdout})
	if err != nil {
		t.Fatal(err)
	}
	log.With("component", "test").Debug("stored upload", "name", "a.txt")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(stdout.String(), "name=a.txt") {
		t.Errorf("stdout missing record: %q", stdout.String())
	}
	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "component=test") {
		t.Errorf("log file missing record: %q", b)
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var stdout bytes.Buffer
	log, _, err := New(Options{Level: "warn", Stdout: &stdout})
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hidden")
	log.Warn("shown")

	if strings.Contains(stdout.String(), "hidden") || !strings.Contains(stdout.String(), "shown") {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}
