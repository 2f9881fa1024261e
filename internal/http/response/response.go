package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"hireflow/internal/common"
	"hireflow/internal/http/metrics"
)

type errorBody struct {
	Error  string            `json:"error"`
	Code   common.Code       `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

var errorCollector atomic.Pointer[metrics.Collector]

// SetErrorCollector makes Error count 5xx answers.
func SetErrorCollector(collector *metrics.Collector) {
	errorCollector.Store(collector)
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// Error writes err as {"error", "code", "fields"} with the status for its
// code. Upstream failures without a usable message get a generic one.
func Error(w http.ResponseWriter, err error) {
	ErrorWithMessage(w, err, common.MessageOr(err, http.StatusText(common.HTTPStatus(err))))
}

// ErrorWithMessage is Error with the text already chosen by the caller.
func ErrorWithMessage(w http.ResponseWriter, err error, message string) {
	status := common.HTTPStatus(err)
	body := errorBody{Error: message, Code: common.CodeOf(err)}
	var coded *common.Error
	if errors.As(err, &coded) {
		body.Fields = coded.Fields
	}
	if status >= http.StatusInternalServerError {
		if collector := errorCollector.Load(); collector != nil {
			collector.IncErrors()
		}
	}
	JSON(w, status, body)
}
