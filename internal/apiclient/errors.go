package apiclient

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error represents a failed API call: a transport failure, a non-2xx
// status, or a body that could not be decoded.
type Error struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api error for %s %s: %s", e.Method, e.URL, e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// serverMessage pulls a human readable message out of an error body of the
// form {"message": "..."} or {"error": "..."}.
func serverMessage(body []byte) string {
	var shape struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &shape); err != nil {
		return ""
	}
	if shape.Message != "" {
		return shape.Message
	}
	return shape.Error
}
