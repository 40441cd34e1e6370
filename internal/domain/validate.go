package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Size bounds for free-text fields, in bytes.
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 16 * 1024
	MaxContentLength     = 64 * 1024
	MaxNotesLength       = 16 * 1024
	MaxKindLength        = 32
	MaxAgentNameLength   = 64
	MaxCodeLength        = 32
)

// Well-known message kinds. Anything else is accepted as a custom kind after
// length and charset checks.
const (
	KindMsgHandoff  = "handoff"
	KindMsgQuestion = "question"
	KindMsgComment  = "comment"
	KindMsgSolution = "solution"
	KindMsgBlocker  = "blocker"
)

// WellKnownKinds lists the kinds agents are expected to understand.
var WellKnownKinds = []string{KindMsgHandoff, KindMsgQuestion, KindMsgComment, KindMsgSolution, KindMsgBlocker}

var (
	codeRe  = regexp.MustCompile(`^[A-Z][A-Z0-9_-]{0,31}$`)
	agentRe = regexp.MustCompile(`^[a-z0-9-]{1,64}$`)
)

// ValidateTaskCode checks the task code format: starts with an uppercase
// letter, up to 32 chars of [A-Z0-9_-], and contains at least one hyphen or
// digit so codes read like TASK-001 rather than bare words.
func ValidateTaskCode(code string) error {
	if !codeRe.MatchString(code) {
		return Validationf("task code %q must match [A-Z][A-Z0-9_-]{0,31}", code)
	}
	if !strings.ContainsAny(code, "-0123456789") {
		return Validationf("task code %q must contain at least one hyphen or digit", code)
	}
	return nil
}

// ValidateAgentName checks an agent name: 1-64 chars of [a-z0-9-].
func ValidateAgentName(name string) error {
	if !agentRe.MatchString(name) {
		return Validationf("agent name %q must be 1-64 chars of [a-z0-9-]", name)
	}
	return nil
}

// ValidateTaskName checks a task name: 1-200 printable characters.
func ValidateTaskName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 1 || n > MaxNameLength {
		return Validationf("task name must be 1-%d characters, got %d", MaxNameLength, n)
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return Validationf("task name contains a non-printable character")
		}
	}
	return nil
}

// ValidateDescription checks a task description: at most 16 KiB.
func ValidateDescription(s string) error {
	if len(s) > MaxDescriptionLength {
		return Validationf("description exceeds %d bytes", MaxDescriptionLength)
	}
	return nil
}

// ValidateMessageKind accepts the well-known kinds and any custom 1-32
// character string free of control characters.
func ValidateMessageKind(kind string) error {
	n := utf8.RuneCountInString(kind)
	if n < 1 || n > MaxKindLength {
		return Validationf("message kind must be 1-%d characters, got %d", MaxKindLength, n)
	}
	for _, r := range kind {
		if unicode.IsControl(r) {
			return Validationf("message kind contains a control character")
		}
	}
	return nil
}

// ValidateMessageContent checks message content: 1 byte to 64 KiB.
func ValidateMessageContent(s string) error {
	if len(s) == 0 {
		return Validationf("message content must not be empty")
	}
	if len(s) > MaxContentLength {
		return Validationf("message content exceeds %d bytes", MaxContentLength)
	}
	return nil
}

// ValidateNotes checks session notes: at most 16 KiB.
func ValidateNotes(s string) error {
	if len(s) > MaxNotesLength {
		return Validationf("notes exceed %d bytes", MaxNotesLength)
	}
	return nil
}

// ValidateProductivityScore checks the score range 0.0-1.0 inclusive.
func ValidateProductivityScore(score float64) error {
	if score < 0 || score > 1 {
		return Validationf("productivity_score must be between 0.0 and 1.0, got %g", score)
	}
	return nil
}
