package docstream

import (
	"fmt"
	"net/http"
)

// ErrorCode distinguishes the streamer's typed failures so the web handler
// can map them onto distinct HTTP responses
type ErrorCode string

const (
	CodeNotFound          ErrorCode = "not-found"
	CodeForbidden         ErrorCode = "forbidden"
	CodeIntegrityConflict ErrorCode = "integrity-conflict"
)

// StreamError is a typed, expected failure of a document fetch
type StreamError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *StreamError) Error() string {
	return e.Message
}

// HTTPStatus maps the error code onto its response status
func (e *StreamError) HTTPStatus() int {
	switch e.Code {
	case CodeForbidden:
		return http.StatusForbidden
	case CodeIntegrityConflict:
		return http.StatusConflict
	default:
		return http.StatusNotFound
	}
}

func notFoundf(format string, args ...interface{}) *StreamError {
	return &StreamError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func forbiddenf(format string, args ...interface{}) *StreamError {
	return &StreamError{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...interface{}) *StreamError {
	return &StreamError{Code: CodeIntegrityConflict, Message: fmt.Sprintf(format, args...)}
}
