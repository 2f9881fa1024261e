package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMessageOr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "server message", err: NewStatusError(http.StatusBadRequest, "Invalid OTP"), want: "Invalid OTP"},
		{name: "empty server message", err: NewStatusError(http.StatusInternalServerError, ""), want: "fallback"},
		{name: "network", err: NewError(CodeNetwork, "dial tcp: refused", errors.New("refused")), want: "fallback"},
		{name: "validation", err: NewValidationError("Passwords do not match.", nil), want: "Passwords do not match."},
		{name: "plain error", err: errors.New("boom"), want: "fallback"},
		{name: "wrapped", err: fmt.Errorf("login: %w", NewStatusError(http.StatusUnauthorized, "Invalid credentials")), want: "Invalid credentials"},
	}
	for _, tc := range cases {
		if got := MessageOr(tc.err, "fallback"); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
	if got := MessageOr(nil, "fallback"); got != "" {
		t.Fatalf("expected empty message for nil error, got %q", got)
	}
}

func TestCodeForStatus(t *testing.T) {
	cases := map[int]Code{
		http.StatusBadRequest:          CodeValidation,
		http.StatusUnauthorized:        CodeUnauthorized,
		http.StatusForbidden:           CodeForbidden,
		http.StatusNotFound:            CodeNotFound,
		http.StatusConflict:            CodeConflict,
		http.StatusTooManyRequests:     CodeRateLimited,
		http.StatusInternalServerError: CodeServer,
		http.StatusNotImplemented:      CodeServer,
	}
	for status, want := range cases {
		if got := CodeForStatus(status); got != want {
			t.Fatalf("status %d: expected %s, got %s", status, want, got)
		}
	}
}

func TestIsUnwrapsChains(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewError(CodeForbidden, "Access denied. Recruiters only.", nil))
	if !Is(err, CodeForbidden) {
		t.Fatalf("expected forbidden code")
	}
	if Is(err, CodeUnauthorized) {
		t.Fatalf("unexpected unauthorized code")
	}
	if HTTPStatus(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", HTTPStatus(err))
	}
}
