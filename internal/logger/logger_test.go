package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToFileAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stepwise.log")
	if err := Init("info", path); err != nil {
		t.Fatalf("init: %v", err)
	}
	Debug("hidden", "k", 1)
	Info("tool finished", "tool", "read_file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "tool=read_file") {
		t.Errorf("missing info line: %q", out)
	}
}

func TestInitBadFile(t *testing.T) {
	if err := Init("debug", filepath.Join(t.TempDir(), "missing", "dir", "x.log")); err == nil {
		t.Fatal("expected error for unwritable log path")
	}
}
