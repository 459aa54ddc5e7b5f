package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestWrap_PreservesCode(t *testing.T) {
	base := UnknownColumn("defect_type")
	wrapped := Wrap(base, "pareto aggregation failed")

	if GetCode(wrapped) != CodeUnknownColumn {
		t.Errorf("expected code %s, got %s", CodeUnknownColumn, GetCode(wrapped))
	}
	if !stderrors.Is(wrapped, ErrUnknownColumn) {
		t.Error("wrapped error should match ErrUnknownColumn")
	}
	if stderrors.Is(wrapped, ErrEmptyTable) {
		t.Error("wrapped error should not match ErrEmptyTable")
	}
}

func TestWrap_ForeignError(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("disk on fire"), "read failed")
	if GetCode(wrapped) != CodeInternalError {
		t.Errorf("expected %s, got %s", CodeInternalError, GetCode(wrapped))
	}
	if Wrap(nil, "noop") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestHasCode_ThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("stratify: %w", InsufficientData("need two values"))
	if !HasCode(err, CodeInsufficientData) {
		t.Error("HasCode should see through fmt.Errorf wrapping")
	}
	if HasCode(err, CodeInvalidInput) {
		t.Error("HasCode matched the wrong code")
	}
	if !IsAppError(err) {
		t.Error("IsAppError should find the wrapped AppError")
	}
}

func TestAppError_Message(t *testing.T) {
	err := Wrap(EmptySeries("cycle_time"), "histogram")
	want := `histogram: column "cycle_time" has no values`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
