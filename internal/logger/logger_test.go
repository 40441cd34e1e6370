package logger

import (
	"path/filepath"
	"testing"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "verbose"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewDefaults(t *testing.T) {
	log, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := log.Level(); got != "info" {
		t.Errorf("default level = %q, want info", got)
	}
}

func TestSetLevel(t *testing.T) {
	log, err := New(Config{Level: "info", Format: "json"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := log.SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if got := log.Level(); got != "debug" {
		t.Errorf("level = %q, want debug", got)
	}
	if err := log.SetLevel("chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
	// A failed SetLevel must not change the effective level.
	if got := log.Level(); got != "debug" {
		t.Errorf("level after failed SetLevel = %q, want debug", got)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "axon.log")
	log, err := New(Config{Level: "debug", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("hello")
	_ = log.Sync()
}

func TestChildLoggersShareLevel(t *testing.T) {
	log, err := New(Config{Level: "info"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	child := log.WithFields()
	if err := log.SetLevel("error"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if got := child.Level(); got != "error" {
		t.Errorf("child level = %q, want error", got)
	}
}
