package application

import "testing"

func TestLabelTables(t *testing.T) {
	cases := []struct {
		status    Status
		recruiter string
		student   string
	}{
		{StatusPending, "pending", "pending"},
		{StatusReviewed, "reviewed", "in-review"},
		{StatusShortlisted, "shortlisted", "interview"},
		{StatusAccepted, "accepted", "accepted"},
		{StatusRejected, "rejected", "rejected"},
	}
	for _, tc := range cases {
		if got := tc.status.Label(AudienceRecruiter); got != tc.recruiter {
			t.Fatalf("%s recruiter label: expected %q, got %q", tc.status, tc.recruiter, got)
		}
		if got := tc.status.Label(AudienceStudent); got != tc.student {
			t.Fatalf("%s student label: expected %q, got %q", tc.status, tc.student, got)
		}
	}
}

func TestParseStatusAliases(t *testing.T) {
	cases := map[string]Status{
		"Pending":     StatusPending,
		"applied":     StatusPending,
		"in-review":   StatusReviewed,
		"in_review":   StatusReviewed,
		"interview":   StatusShortlisted,
		"shortlisted": StatusShortlisted,
		" REJECTED ":  StatusRejected,
	}
	for input, want := range cases {
		got, ok := ParseStatus(input)
		if !ok || got != want {
			t.Fatalf("%q: expected %s, got %s (%v)", input, want, got, ok)
		}
	}
	for _, input := range []string{"", "archived"} {
		if _, ok := ParseStatus(input); ok {
			t.Fatalf("expected %q to be rejected", input)
		}
	}
}

func TestLabelOfLegacyValue(t *testing.T) {
	if got := Status("interview").Label(AudienceRecruiter); got != "shortlisted" {
		t.Fatalf("expected legacy value to map through canonical status, got %q", got)
	}
	if got := Status("mystery").Label(AudienceStudent); got != "mystery" {
		t.Fatalf("expected unknown value to pass through, got %q", got)
	}
}

func TestStatusesCoverLabels(t *testing.T) {
	for _, status := range Statuses() {
		if _, ok := recruiterLabels[status]; !ok {
			t.Fatalf("missing recruiter label for %s", status)
		}
		if _, ok := studentLabels[status]; !ok {
			t.Fatalf("missing student label for %s", status)
		}
	}
}
