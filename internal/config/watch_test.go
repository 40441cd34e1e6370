package config

import (
	"os"
	"testing"

	"github.com/axonhq/axon/internal/logger"
)

func TestWatcherReloadAppliesLogLevel(t *testing.T) {
	path := writeFile(t, "log:\n  level: debug\n")
	log := logger.Nop()
	w := NewWatcher(path, log)

	w.reload()
	if log.Level() != "debug" {
		t.Fatalf("level = %q, want debug", log.Level())
	}

	if err := os.WriteFile(path, []byte("log:\n  level: error\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w.reload()
	if log.Level() != "error" {
		t.Fatalf("level = %q, want error", log.Level())
	}
}

func TestWatcherReloadIgnoresBadFile(t *testing.T) {
	path := writeFile(t, "log:\n  level: debug\n")
	log := logger.Nop()
	w := NewWatcher(path, log)
	w.reload()

	if err := os.WriteFile(path, []byte("log: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	w.reload()
	if log.Level() != "debug" {
		t.Fatalf("level changed on bad reload: %q", log.Level())
	}
}

func TestWatcherReloadIgnoresBadLevel(t *testing.T) {
	path := writeFile(t, "log:\n  level: shouting\n")
	log := logger.Nop()
	w := NewWatcher(path, log)
	w.reload()
	if log.Level() != "info" {
		t.Fatalf("level = %q, want info untouched", log.Level())
	}
}
