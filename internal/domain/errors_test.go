package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindJSONRPCCodes(t *testing.T) {
	tests := []struct {
		kind Kind
		code int
	}{
		{KindNotFound, -32001},
		{KindValidation, -32002},
		{KindDuplicateCode, -32003},
		{KindInvalidStateTransition, -32004},
		{KindStore, -32005},
		{KindProtocol, -32006},
		{KindConflict, -32007},
	}
	for _, tt := range tests {
		if got := tt.kind.JSONRPCCode(); got != tt.code {
			t.Errorf("%s code = %d, want %d", tt.kind, got, tt.code)
		}
	}
}

func TestAsErrorThroughWrap(t *testing.T) {
	orig := Conflictf(ReasonAlreadyClaimed, "task 4 is already claimed")
	wrapped := fmt.Errorf("claim_task: %w", orig)

	e, ok := AsError(wrapped)
	if !ok {
		t.Fatal("AsError failed to find typed error in chain")
	}
	if e.Kind != KindConflict || e.Reason != ReasonAlreadyClaimed {
		t.Errorf("got kind=%s reason=%s", e.Kind, e.Reason)
	}
	if !IsKind(wrapped, KindConflict) {
		t.Error("IsKind(wrapped, conflict) = false")
	}
	if IsKind(wrapped, KindNotFound) {
		t.Error("IsKind matched the wrong kind")
	}
}

func TestWrapStoreKeepsCause(t *testing.T) {
	cause := errors.New("disk I/O error")
	e := WrapStore(cause, "storage failure")
	if !errors.Is(e, cause) {
		t.Error("cause lost from chain")
	}
	if e.Message != "storage failure" {
		t.Errorf("client message = %q", e.Message)
	}
	if e.Error() != "storage failure: disk I/O error" {
		t.Errorf("log message = %q", e.Error())
	}
}

func TestIsKindNonTyped(t *testing.T) {
	if IsKind(errors.New("plain"), KindStore) {
		t.Error("plain error must not match any kind")
	}
	if IsKind(nil, KindStore) {
		t.Error("nil error must not match any kind")
	}
}
