package api

import (
	"encoding/json"
	"fmt"
)

// AuthError reports that the server rejected the request as unauthorized or
// forbidden (401/403). The session layer treats it as a session-expiry
// signal.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: unauthorized (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: unauthorized (%d)", e.StatusCode)
}

// ValidationError reports a rejected request: a client-side precondition
// failure (StatusCode 0) or a non-auth 4xx from the server.
type ValidationError struct {
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	if e.StatusCode == 0 {
		return "api: " + e.Message
	}
	return fmt.Sprintf("api: rejected (%d): %s", e.StatusCode, e.Message)
}

// ServerError reports a 5xx response.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: server error (%d)", e.StatusCode)
}

// NetworkError wraps a transport failure: timeout, DNS, connection refused.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("api: network: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-2xx response to the error taxonomy.
// 401/403 -> AuthError, other 4xx -> ValidationError, 5xx -> ServerError.
func classifyStatus(status int, body []byte) error {
	msg := serverMessage(body)
	switch {
	case status == 401 || status == 403:
		return &AuthError{StatusCode: status, Message: msg}
	case status >= 400 && status < 500:
		return &ValidationError{StatusCode: status, Message: msg}
	default:
		return &ServerError{StatusCode: status, Message: msg}
	}
}

// serverMessage extracts a human-readable error from a JSON error body.
// The backend uses "error"; its auth layer uses "detail".
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch {
	case payload.Error != "":
		return payload.Error
	case payload.Detail != "":
		return payload.Detail
	default:
		return payload.Message
	}
}

// ServerMessage returns the server-supplied message carried by a classified
// error, or "" when the error carries none.
func ServerMessage(err error) string {
	switch e := err.(type) {
	case *AuthError:
		return e.Message
	case *ValidationError:
		return e.Message
	case *ServerError:
		return e.Message
	default:
		return ""
	}
}
