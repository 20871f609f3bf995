package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("income", "must be positive")
	if got := err.Error(); got != "income: must be positive" {
		t.Errorf("Error() = %q", got)
	}
	if !IsValidation(err) {
		t.Error("IsValidation should report true")
	}
	if IsValidation(errors.New("other")) {
		t.Error("IsValidation should report false for plain errors")
	}
}

func TestIndexedValidationError(t *testing.T) {
	err := NewIndexedValidationError("split", 2, "no category selected")
	if got := err.Error(); got != "split[2]: no category selected" {
		t.Errorf("Error() = %q", got)
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatal("should unwrap to *ValidationError")
	}
	if verr.Index != 2 {
		t.Errorf("Index = %d, want 2", verr.Index)
	}
}

func TestIsValidationWrapped(t *testing.T) {
	err := fmt.Errorf("saving category: %w", NewValidationError("name", "required"))
	if !IsValidation(err) {
		t.Error("IsValidation should see through wrapping")
	}
}

func TestInvariantViolationError(t *testing.T) {
	err := NewInvariantViolation("surplus-singleton", "two surplus categories")
	want := "invariant violated (surplus-singleton): two surplus categories"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestUserError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewUserError("could not save budget", inner)

	if !errors.Is(err, inner) {
		t.Error("UserError should unwrap to the inner error")
	}
	if got := err.Error(); got != "could not save budget: disk full" {
		t.Errorf("Error() = %q", got)
	}

	bare := NewUserError("just a message", nil)
	if got := bare.Error(); got != "just a message" {
		t.Errorf("Error() = %q", got)
	}
}
