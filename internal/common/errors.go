package common

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeNetwork      Code = "network"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeValidation   Code = "validation"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeRateLimited  Code = "rate_limited"
	CodeServer       Code = "server"
	CodeInternal     Code = "internal"
)

// Error несет код категории, текст для пользователя и исходную причину.
type Error struct {
	Code    Code
	Message string
	Status  int
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return string(e.Code) + ": " + e.Err.Error()
		}
		return e.Message + ": " + e.Err.Error()
	}
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NewValidationError(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// NewStatusError builds an error for a non-2xx response. The message is the
// text the server put in its body, possibly empty.
func NewStatusError(status int, message string) *Error {
	return &Error{Code: CodeForStatus(status), Message: message, Status: status}
}

func Is(err error, code Code) bool {
	var target *Error
	if errors.As(err, &target) {
		return target.Code == code
	}
	return false
}

func CodeOf(err error) Code {
	var target *Error
	if errors.As(err, &target) {
		return target.Code
	}
	return CodeInternal
}

// MessageOr returns the text a user should see for err: the server or
// validation message when there is one, otherwise fallback.
func MessageOr(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var target *Error
	if !errors.As(err, &target) {
		return fallback
	}
	switch target.Code {
	case CodeNetwork, CodeInternal:
		return fallback
	}
	if target.Message == "" {
		return fallback
	}
	return target.Message
}

func CodeForStatus(status int) Code {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return CodeValidation
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status == http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return CodeServer
	}
}

func HTTPStatus(err error) int {
	var target *Error
	if errors.As(err, &target) && target.Status != 0 {
		return target.Status
	}
	switch CodeOf(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
