package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeCartNotFound, http.StatusNotFound},
		{CodeCartEmpty, http.StatusBadRequest},
		{CodeInsufficientStock, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeInternal, http.StatusInternalServerError},
		{CodeDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.code, tc.status, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(CodeDependency, cause, "load product")

	if err.Unwrap() != cause {
		t.Fatalf("expected cause to be preserved")
	}
	if err.Error() != "DEPENDENCY_ERROR: load product" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	typed := New(CodeInsufficientStock, "not enough stock").WithDetails(map[string]any{"available": 1})
	wrapped := fmt.Errorf("checkout: %w", typed)

	found := As(wrapped)
	if found == nil {
		t.Fatal("expected typed error")
	}
	if found.Code() != CodeInsufficientStock {
		t.Fatalf("unexpected code %s", found.Code())
	}
	if found.Details() == nil {
		t.Fatal("expected details to survive wrapping")
	}
}

func TestAsReturnsNilForPlainError(t *testing.T) {
	if As(fmt.Errorf("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeInternal, fmt.Errorf("inner"), "outer")
	d := Dump(err)

	if d.Code != CodeInternal {
		t.Fatalf("unexpected code %s", d.Code)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(d.Chain))
	}
}
