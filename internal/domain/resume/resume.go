package resume

import (
	"path/filepath"
	"strings"

	"hireflow/internal/common"
)

var allowedExtensions = map[string]bool{"pdf": true, "docx": true, "doc": true}

type Resume struct {
	ID              int64  `json:"id"`
	Filename        string `json:"filename"`
	UploadedAt      string `json:"uploaded_at"`
	AnalysisSummary string `json:"analysis_summary,omitempty"`
}

type Analysis struct {
	Summary         string   `json:"summary,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	MatchScore      float64  `json:"match_score,omitempty"`
}

type UploadResult struct {
	Message  string    `json:"message"`
	ResumeID int64     `json:"resume_id"`
	Analysis *Analysis `json:"analysis,omitempty"`
}

// File is an attachment ready for a multipart upload.
type File struct {
	Name string
	Data []byte
}

// Validate checks the rules the server applies to uploaded resumes.
func (f File) Validate() error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return common.NewValidationError("Please select a resume file.", map[string]string{"resume": "file is required"})
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !allowedExtensions[ext] {
		return common.NewValidationError("Invalid file type. Only PDF and DOCX allowed.", map[string]string{"resume": "unsupported file type"})
	}
	if len(f.Data) == 0 {
		return common.NewValidationError("The selected file is empty.", map[string]string{"resume": "file is empty"})
	}
	return nil
}
