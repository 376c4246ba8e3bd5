package errors

import (
	"errors"
	"fmt"
	"testing"
)

// TestErrorIsMatchesByCode verifies errors.Is matches domain errors by
// code regardless of message.
func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeDiceInvalidExpression, "bad term in 2d6+x")
	target := New(CodeDiceInvalidExpression, "")

	if !errors.Is(err, target) {
		t.Fatal("expected code match")
	}
	if errors.Is(err, New(CodeDiceEmptyExpression, "")) {
		t.Fatal("expected code mismatch")
	}
}

// TestWrapPreservesCause verifies wrapped causes stay reachable through
// the error chain.
func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeNotFound, "load persona", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	wrapped := fmt.Errorf("outer: %w", err)
	var domainErr *Error
	if !errors.As(wrapped, &domainErr) {
		t.Fatal("expected domain error in chain")
	}
	if domainErr.Code != CodeNotFound {
		t.Fatalf("unexpected code %s", domainErr.Code)
	}
}

// TestWithMetadata verifies metadata is carried on the error.
func TestWithMetadata(t *testing.T) {
	err := WithMetadata(CodeMacroHandlerFailed, "roll failed", map[string]string{"handler": "roll"})
	if err.Metadata["handler"] != "roll" {
		t.Fatalf("unexpected metadata %v", err.Metadata)
	}
	if err.Error() != "roll failed" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
