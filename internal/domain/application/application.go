package application

import (
	"context"
	"strings"
)

// Status is the canonical application status. Both audiences read the same
// value through their own label table.
type Status string

const (
	StatusPending     Status = "pending"
	StatusReviewed    Status = "reviewed"
	StatusShortlisted Status = "shortlisted"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
)

type Audience int

const (
	AudienceRecruiter Audience = iota
	AudienceStudent
)

var recruiterLabels = map[Status]string{
	StatusPending:     "pending",
	StatusReviewed:    "reviewed",
	StatusShortlisted: "shortlisted",
	StatusAccepted:    "accepted",
	StatusRejected:    "rejected",
}

var studentLabels = map[Status]string{
	StatusPending:     "pending",
	StatusReviewed:    "in-review",
	StatusShortlisted: "interview",
	StatusAccepted:    "accepted",
	StatusRejected:    "rejected",
}

// Statuses lists the canonical values in workflow order.
func Statuses() []Status {
	return []Status{StatusPending, StatusReviewed, StatusShortlisted, StatusAccepted, StatusRejected}
}

// ParseStatus accepts canonical values and the spellings either audience
// has used for them.
func ParseStatus(value string) (Status, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "":
		return "", false
	case "applied":
		return StatusPending, true
	case "review", "in_review", "in-review", "in review":
		return StatusReviewed, true
	case "interview", "invited":
		return StatusShortlisted, true
	}
	status := Status(normalized)
	if _, ok := recruiterLabels[status]; ok {
		return status, true
	}
	return "", false
}

// Label maps a status to the text shown to an audience. Unknown values are
// shown as-is.
func (s Status) Label(audience Audience) string {
	table := recruiterLabels
	if audience == AudienceStudent {
		table = studentLabels
	}
	if label, ok := table[s]; ok {
		return label
	}
	if parsed, ok := ParseStatus(string(s)); ok {
		return table[parsed]
	}
	return string(s)
}

// Normalize returns the canonical form of a status read from the server.
func (s Status) Normalize() Status {
	if parsed, ok := ParseStatus(string(s)); ok {
		return parsed
	}
	return s
}

type Application struct {
	ID              int64    `json:"id"`
	JobID           int64    `json:"job_id,omitempty"`
	JobTitle        string   `json:"job_title,omitempty"`
	StudentID       int64    `json:"student_id,omitempty"`
	Name            string   `json:"name,omitempty"`
	Email           string   `json:"email,omitempty"`
	ResumePath      string   `json:"resume_path,omitempty"`
	Score           *float64 `json:"score,omitempty"`
	AnalysisSummary string   `json:"analysis_summary,omitempty"`
	Status          Status   `json:"status,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
	AppliedAt       string   `json:"applied_at,omitempty"`
}

// ScoreValue returns the score or zero when the application is unscored.
func (a Application) ScoreValue() float64 {
	if a.Score == nil {
		return 0
	}
	return *a.Score
}

type Analysis struct {
	Message string  `json:"message,omitempty"`
	Score   float64 `json:"score"`
	Summary string  `json:"summary"`
}

// Analyzer scores one application. The engine lives outside this client.
type Analyzer interface {
	Analyze(ctx context.Context, applicationID int64) (Analysis, error)
}

type SubmitResult struct {
	Message       string `json:"message"`
	ApplicationID int64  `json:"application_id"`
}
