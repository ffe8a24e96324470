package databricks

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from a Databricks REST endpoint.
type APIError struct {
	StatusCode int
	ErrorCode  string
	Message    string
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("databricks API error %d (%s): %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("databricks API error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether the request may succeed if sent again.
func (e *APIError) IsRetryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return e.ErrorCode == "TEMPORARILY_UNAVAILABLE"
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		ErrorCode string `json:"error_code"`
		Message   string `json:"message"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err == nil && (payload.ErrorCode != "" || payload.Message != "") {
		apiErr.ErrorCode = payload.ErrorCode
		apiErr.Message = payload.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// StatementError reports a statement that finished in a state other than SUCCEEDED.
type StatementError struct {
	StatementID string
	State       string
	ErrorCode   string
	Message     string
}

func (e *StatementError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "no error message"
	}
	if e.ErrorCode != "" {
		return fmt.Sprintf("statement %s %s: [%s] %s", e.StatementID, strings.ToLower(e.State), e.ErrorCode, msg)
	}
	return fmt.Sprintf("statement %s %s: %s", e.StatementID, strings.ToLower(e.State), msg)
}

// ErrMaxPollsExceeded is returned when a statement is still running after MaxPolls polls.
var ErrMaxPollsExceeded = errors.New("query exceeded maximum execution time")
