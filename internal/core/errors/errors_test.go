package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "resource not found")
		if err.Error() != "[NOT_FOUND] resource not found" {
			t.Errorf("expected [NOT_FOUND] resource not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		expected := "[INTERNAL_ERROR] internal failure: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		err := fmt.Errorf("resolve: %w", New(CodeModPath, "no file for mod a"))
		if !IsCode(err, CodeModPath) {
			t.Error("expected IsCode to see through fmt wrapping")
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := AddContext(New(CodeModPath, "missing"), CtxModule, "demo::a")
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatalf("expected DomainError, got %T", err)
		}
		if de.Context[CtxModule] != "demo::a" {
			t.Errorf("expected module context, got %v", de.Context)
		}

		plain := AddContext(errors.New("boom"), CtxPath, "x.rs")
		if !IsCode(plain, CodeInternal) {
			t.Errorf("expected foreign errors to become internal, got %v", plain)
		}
	})
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.New("plain"), ExitFailure},
		{New(CodeValidationError, "bad flag"), ExitFailure},
		{New(CodeNameMissing, "x"), 2},
		{New(CodePackageMissing, "x"), 3},
		{New(CodeManifestMissing, "x"), 4},
		{New(CodeEntryMissing, "x"), 5},
		{New(CodeModNameEmpty, "x"), 6},
		{fmt.Errorf("wrapped: %w", New(CodeModPath, "x")), 9},
		{New(CodeParse, "x"), 12},
	}
	for _, tc := range cases {
		if got := ExitCode(tc.err); got != tc.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
