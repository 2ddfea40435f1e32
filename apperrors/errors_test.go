package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Run("Direct error", func(t *testing.T) {
		err := New(KindAlreadyJoined, "Already signed up")
		if KindOf(err) != KindAlreadyJoined {
			t.Errorf("Expected already_joined, got %s", KindOf(err))
		}
	})

	t.Run("Wrapped in a chain", func(t *testing.T) {
		inner := Wrap(KindDeadlinePassed, "Too late", errors.New("db row"))
		err := fmt.Errorf("handling request: %w", inner)
		if KindOf(err) != KindDeadlinePassed {
			t.Errorf("Expected deadline_passed, got %s", KindOf(err))
		}
	})

	t.Run("Plain error defaults to internal", func(t *testing.T) {
		if KindOf(errors.New("boom")) != KindInternal {
			t.Error("Expected internal for plain errors")
		}
	})
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindInvalidState, http.StatusUnprocessableEntity},
		{KindDeadlinePassed, http.StatusUnprocessableEntity},
		{KindAlreadyJoined, http.StatusConflict},
		{KindAlreadyRecorded, http.StatusConflict},
		{KindConflict, http.StatusConflict},
		{KindForbidden, http.StatusForbidden},
		{KindValidation, http.StatusBadRequest},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := tc.kind.HTTPStatus(); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.kind, tc.want, got)
		}
	}
}

func TestRetryable(t *testing.T) {
	for kind := KindInternal; kind <= KindValidation; kind++ {
		want := kind == KindConflict
		if got := kind.Retryable(); got != want {
			t.Errorf("%s: expected retryable=%v, got %v", kind, want, got)
		}
	}
}

func TestErrorString(t *testing.T) {
	plain := New(KindForbidden, "Not yours")
	if plain.Error() != "[forbidden] Not yours" {
		t.Errorf("Unexpected message: %s", plain.Error())
	}

	wrapped := Wrap(KindInternal, "Query failed", errors.New("connection reset"))
	if wrapped.Error() != "[internal] Query failed: connection reset" {
		t.Errorf("Unexpected message: %s", wrapped.Error())
	}
	if !errors.Is(wrapped, wrapped.Internal) {
		t.Error("Expected wrapped error to unwrap to the internal error")
	}
}

func TestMessageOf(t *testing.T) {
	if MessageOf(New(KindNotFound, "Event not found")) != "Event not found" {
		t.Error("Expected the app error message")
	}
	if MessageOf(errors.New("raw sql error")) != "An unexpected error occurred" {
		t.Error("Expected internal details to be hidden")
	}
}
