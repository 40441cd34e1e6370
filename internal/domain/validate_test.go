package domain

import (
	"strings"
	"testing"
)

func TestValidateTaskCode(t *testing.T) {
	tests := []struct {
		code string
		ok   bool
	}{
		{"TASK-001", true},
		{"A-1", true},
		{"A1", true},
		{"X_2-Y", true},
		{"CRUD-001", true},
		{"T" + strings.Repeat("A", 30) + "-", true},
		{"", false},
		{"TASK", false},         // no hyphen or digit
		{"task-001", false},     // lowercase
		{"1TASK", false},        // must start with a letter
		{"-TASK", false},        // must start with a letter
		{"TASK 001", false},     // space
		{"T" + strings.Repeat("A", 31) + "1", false}, // 33 chars
	}
	for _, tt := range tests {
		err := ValidateTaskCode(tt.code)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateTaskCode(%q) error = %v, want ok=%v", tt.code, err, tt.ok)
		}
	}
}

func TestValidateAgentName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"frontend", true},
		{"agent-7", true},
		{"a", true},
		{strings.Repeat("a", 64), true},
		{"", false},
		{"Agent", false},
		{"agent_7", false},
		{"agent 7", false},
		{strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		err := ValidateAgentName(tt.name)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateAgentName(%q) error = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

func TestValidateTaskName(t *testing.T) {
	if err := ValidateTaskName("Fix the flaky integration test"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
	if err := ValidateTaskName(strings.Repeat("x", MaxNameLength)); err != nil {
		t.Errorf("max-length name rejected: %v", err)
	}
	if err := ValidateTaskName(""); err == nil {
		t.Error("empty name accepted")
	}
	if err := ValidateTaskName(strings.Repeat("x", MaxNameLength+1)); err == nil {
		t.Error("over-length name accepted")
	}
	if err := ValidateTaskName("bad\x00name"); err == nil {
		t.Error("name with control character accepted")
	}
}

func TestValidateMessageKind(t *testing.T) {
	for _, k := range WellKnownKinds {
		if err := ValidateMessageKind(k); err != nil {
			t.Errorf("well-known kind %q rejected: %v", k, err)
		}
	}
	if err := ValidateMessageKind("design-note"); err != nil {
		t.Errorf("custom kind rejected: %v", err)
	}
	if err := ValidateMessageKind(""); err == nil {
		t.Error("empty kind accepted")
	}
	if err := ValidateMessageKind(strings.Repeat("k", 33)); err == nil {
		t.Error("33-char kind accepted")
	}
	if err := ValidateMessageKind("bad\nkind"); err == nil {
		t.Error("kind with newline accepted")
	}
}

func TestValidateMessageContent(t *testing.T) {
	if err := ValidateMessageContent("hello"); err != nil {
		t.Errorf("valid content rejected: %v", err)
	}
	if err := ValidateMessageContent(""); err == nil {
		t.Error("empty content accepted")
	}
	if err := ValidateMessageContent(strings.Repeat("x", MaxContentLength+1)); err == nil {
		t.Error("oversized content accepted")
	}
}

func TestValidateProductivityScore(t *testing.T) {
	for _, v := range []float64{0, 0.5, 1} {
		if err := ValidateProductivityScore(v); err != nil {
			t.Errorf("score %g rejected: %v", v, err)
		}
	}
	for _, v := range []float64{-0.01, 1.01, 2} {
		if err := ValidateProductivityScore(v); err == nil {
			t.Errorf("score %g accepted", v)
		}
	}
}
