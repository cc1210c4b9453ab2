package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err      *Error
		expected int
	}{
		{Validation("bad input"), http.StatusUnprocessableEntity},
		{InvalidTransition("cannot complete pending entry"), http.StatusUnprocessableEntity},
		{Conflict("duplicate"), http.StatusConflict},
		{NotFound("missing"), http.StatusNotFound},
		{Transient("db down", errors.New("connection refused")), http.StatusServiceUnavailable},
		{Unauthorized("bad token"), http.StatusUnauthorized},
		{RateLimited("quota exceeded"), http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.expected {
			t.Errorf("%s: expected status %d, got %d", tc.err.Kind, tc.expected, got)
		}
	}
}

func TestAsUnwrapsChain(t *testing.T) {
	inner := Conflict("duplicate key")
	wrapped := fmt.Errorf("create post: %w", inner)

	got, ok := As(wrapped)
	if !ok {
		t.Fatal("expected domain error in chain")
	}
	if got.Kind != KindConflict {
		t.Errorf("expected conflict, got %s", got.Kind)
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Error("plain error should not match")
	}
}

func TestIsKind(t *testing.T) {
	err := NotFound("post not found")
	if !IsKind(err, KindNotFound) {
		t.Error("expected not_found kind to match")
	}
	if IsKind(err, KindConflict) {
		t.Error("kinds should not cross-match")
	}
	if IsKind(nil, KindNotFound) {
		t.Error("nil should never match")
	}
}

func TestTransientUnwrap(t *testing.T) {
	cause := errors.New("i/o timeout")
	err := Transient("storage unavailable", cause)

	if !errors.Is(err, cause) {
		t.Error("expected cause to survive unwrapping")
	}
}

func TestWithCorrelationLeavesOriginal(t *testing.T) {
	original := Validation("bad input", FieldDetail{Field: "content", Message: "is required"})
	stamped := original.WithCorrelation("req-123")

	if stamped.CorrelationID != "req-123" {
		t.Errorf("expected correlation id on copy, got %q", stamped.CorrelationID)
	}
	if original.CorrelationID != "" {
		t.Error("original error must not be mutated")
	}
	if len(stamped.Details) != 1 || stamped.Details[0].Field != "content" {
		t.Error("details must carry over to the stamped copy")
	}
}
