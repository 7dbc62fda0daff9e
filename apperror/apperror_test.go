package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusUnprocessableEntity},
		{NotFound("gone"), http.StatusNotFound},
		{Forbidden("no"), http.StatusForbidden},
		{Conflict("already there"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("gone")), http.StatusNotFound},
	}
	for _, tc := range cases {
		if got := StatusCode(tc.err); got != tc.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("tx failed: %w", Conflict("Cart item is empty."))
	if !IsKind(err, KindConflict) {
		t.Error("wrapped conflict should match KindConflict")
	}
	if IsKind(err, KindNotFound) {
		t.Error("conflict must not match KindNotFound")
	}
	if IsKind(errors.New("plain"), KindConflict) {
		t.Error("plain error must not match any kind")
	}
}

func TestMessageFormatting(t *testing.T) {
	err := Forbidden("You are not authorized to set %s status.", "cancelled")
	if err.Error() != "You are not authorized to set cancelled status." {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
