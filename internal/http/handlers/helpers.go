package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"hireflow/internal/common"
	"hireflow/internal/guard"
)

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return common.NewValidationError("invalid request", map[string]string{"body": "request body is required"})
		}
		return common.NewValidationError("invalid request", map[string]string{"body": "invalid json"})
	}
	return nil
}

// idFromPath returns the numeric path segment at index, counting from the
// first segment after the leading slash.
func idFromPath(r *http.Request, index int) (int64, error) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if index >= len(parts) {
		return 0, common.NewError(common.CodeNotFound, "not found", nil)
	}
	id, err := strconv.ParseInt(parts[index], 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewValidationError("invalid id", map[string]string{"id": "must be a positive integer"})
	}
	return id, nil
}

type sessionView struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

func viewerFrom(r *http.Request) *sessionView {
	decision, ok := guard.DecisionFromContext(r.Context())
	if !ok {
		return nil
	}
	return &sessionView{Subject: decision.Session.Subject, Role: string(decision.Session.Role)}
}
