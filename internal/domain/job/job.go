package job

import (
	"strings"

	"hireflow/internal/common"
)

type Status string

const (
	StatusActive Status = "active"
	StatusDraft  Status = "draft"
	StatusClosed Status = "closed"
)

func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusActive:
		return StatusActive, true
	case StatusDraft:
		return StatusDraft, true
	case StatusClosed:
		return StatusClosed, true
	default:
		return "", false
	}
}

type Job struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Requirements    string   `json:"requirements,omitempty"`
	Company         string   `json:"company,omitempty"`
	Location        string   `json:"location,omitempty"`
	Type            string   `json:"type,omitempty"`
	Experience      string   `json:"experience,omitempty"`
	Salary          string   `json:"salary,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	Status          Status   `json:"status,omitempty"`
	Deadline        string   `json:"deadline,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
	RecruiterID     int64    `json:"recruiter_id,omitempty"`
	ApplicantsCount int      `json:"applicants_count,omitempty"`
}

// EffectiveStatus treats a missing status as active, as the server does.
func (j Job) EffectiveStatus() Status {
	if j.Status == "" {
		return StatusActive
	}
	return j.Status
}

// Draft is the payload of create and update calls.
type Draft struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Requirements string   `json:"requirements,omitempty"`
	Company      string   `json:"company,omitempty"`
	Location     string   `json:"location,omitempty"`
	Type         string   `json:"type,omitempty"`
	Experience   string   `json:"experience,omitempty"`
	Salary       string   `json:"salary,omitempty"`
	Skills       []string `json:"skills,omitempty"`
	Status       Status   `json:"status,omitempty"`
	Deadline     string   `json:"deadline,omitempty"`
}

func (d Draft) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(d.Title) == "" {
		fields["title"] = "title is required"
	}
	if strings.TrimSpace(d.Description) == "" {
		fields["description"] = "description is required"
	}
	if d.Status != "" {
		if _, ok := ParseStatus(string(d.Status)); !ok {
			fields["status"] = "status must be active, draft, or closed"
		}
	}
	if len(fields) > 0 {
		return common.NewValidationError("Please fill in all required fields.", fields)
	}
	return nil
}

// ParseSkills splits a comma separated skill list.
func ParseSkills(value string) []string {
	parts := strings.Split(value, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if skill := strings.TrimSpace(part); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

// CreateResult is the server acknowledgement of a created job.
type CreateResult struct {
	Message string `json:"message"`
	JobID   int64  `json:"job_id"`
}

// Patch is a partial update. Nil fields are left out of the request.
type Patch struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Requirements *string   `json:"requirements,omitempty"`
	Company      *string   `json:"company,omitempty"`
	Location     *string   `json:"location,omitempty"`
	Type         *string   `json:"type,omitempty"`
	Experience   *string   `json:"experience,omitempty"`
	Salary       *string   `json:"salary,omitempty"`
	Skills       *[]string `json:"skills,omitempty"`
	Status       *Status   `json:"status,omitempty"`
	Deadline     *string   `json:"deadline,omitempty"`
}

func (p Patch) Validate() error {
	fields := map[string]string{}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		fields["title"] = "title cannot be empty"
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		fields["description"] = "description cannot be empty"
	}
	if p.Status != nil {
		if _, ok := ParseStatus(string(*p.Status)); !ok {
			fields["status"] = "status must be active, draft, or closed"
		}
	}
	if len(fields) > 0 {
		return common.NewValidationError("Please check the highlighted fields.", fields)
	}
	return nil
}

// Apply returns j with the patch applied locally.
func (p Patch) Apply(j Job) Job {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	if p.Requirements != nil {
		j.Requirements = *p.Requirements
	}
	if p.Company != nil {
		j.Company = *p.Company
	}
	if p.Location != nil {
		j.Location = *p.Location
	}
	if p.Type != nil {
		j.Type = *p.Type
	}
	if p.Experience != nil {
		j.Experience = *p.Experience
	}
	if p.Salary != nil {
		j.Salary = *p.Salary
	}
	if p.Skills != nil {
		j.Skills = append([]string(nil), (*p.Skills)...)
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.Deadline != nil {
		j.Deadline = *p.Deadline
	}
	return j
}
