package avatarerr

import (
	"errors"
	"strings"
	"testing"
)

var errCause = errors.New("only 12 landmarks")

func TestErrorMatchesKindAndCause(t *testing.T) {
	err := Input(StageMesh, errCause)

	if !errors.Is(err, ErrInput) {
		t.Error("expected error to match ErrInput")
	}
	if !errors.Is(err, errCause) {
		t.Error("expected error to match its cause")
	}
	if errors.Is(err, ErrEncode) {
		t.Error("input error should not match ErrEncode")
	}
}

func TestErrorMessageNamesStage(t *testing.T) {
	err := Encode(StageEncode, errCause)
	msg := err.Error()

	for _, want := range []string{StageEncode, "encode error", "only 12 landmarks"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q should contain %q", msg, want)
		}
	}
}

func TestStageOf(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), Resource(StageMaterial, errCause))
	if got := StageOf(wrapped); got != StageMaterial {
		t.Errorf("StageOf = %q, want %q", got, StageMaterial)
	}
	if got := StageOf(errCause); got != "" {
		t.Errorf("StageOf(plain) = %q, want empty", got)
	}
}
