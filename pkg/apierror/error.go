package apierror

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type Error struct {
	Code    int      `json:"code"`
	Message string   `json:"error"`
	Detail  string   `json:"detail,omitempty"`
	Allowed []string `json:"allowed,omitempty"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WithDetail(code int, message, detail string) *Error {
	return &Error{Code: code, Message: message, Detail: detail}
}

// NotAllowed reports a value outside a whitelist, listing the accepted values.
func NotAllowed(message string, allowed []string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message, Allowed: allowed}
}

func NotFound(resource string) *Error {
	return New(http.StatusNotFound, fmt.Sprintf("%s not found", resource))
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func UnsupportedMediaType(message string) *Error {
	return New(http.StatusUnsupportedMediaType, message)
}

func Unprocessable(message string) *Error {
	return New(http.StatusUnprocessableEntity, message)
}

func TooManyRequests() *Error {
	return New(http.StatusTooManyRequests, "rate limit exceeded")
}

func Unavailable(message string) *Error {
	return New(http.StatusServiceUnavailable, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// Write renders e as a JSON response with e.Code as status.
func Write(w http.ResponseWriter, e *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Code)
	_ = json.NewEncoder(w).Encode(e)
}
