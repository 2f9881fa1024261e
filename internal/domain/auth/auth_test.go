package auth

import (
	"testing"
	"time"
)

func TestHomeFor(t *testing.T) {
	if HomeFor(RoleRecruiter) != "/dashboard/recruiter" {
		t.Fatalf("unexpected recruiter home %q", HomeFor(RoleRecruiter))
	}
	if HomeFor(RoleStudent) != "/dashboard/student" {
		t.Fatalf("unexpected student home %q", HomeFor(RoleStudent))
	}
	if HomeFor(Role("admin")) != LoginPath {
		t.Fatalf("unknown roles must land on login")
	}
}

func TestParseRole(t *testing.T) {
	if role, ok := ParseRole(" Recruiter "); !ok || role != RoleRecruiter {
		t.Fatalf("expected recruiter, got %q %v", role, ok)
	}
	if _, ok := ParseRole("company"); ok {
		t.Fatalf("expected company to be rejected")
	}
}

func TestSessionValid(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	session := Session{Subject: "7", Role: RoleStudent, ExpiresAt: now.Add(time.Minute)}
	if !session.Valid(now) {
		t.Fatalf("expected session to be valid")
	}
	if session.Valid(now.Add(time.Minute)) {
		t.Fatalf("expected session to expire at its expiry instant")
	}
	if (Session{Role: RoleStudent, ExpiresAt: now.Add(time.Hour)}).Valid(now) {
		t.Fatalf("expected session without subject to be invalid")
	}
}
