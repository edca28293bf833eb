package plangen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Failure codes. Malformed individual frames never surface here; they are
// skipped inside the parser and the stream continues.
const (
	CodeTimeout = "TIMEOUT"
	CodeNetwork = "NETWORK_ERROR"
	CodeBackend = "BACKEND_ERROR"
)

// Outcome is the discriminated result of every public operation in this
// package: exactly one of the success and failure arms is populated.
// Callers branch on Success, never on recovered panics or errors.
type Outcome[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func Ok[T any](data T, message string) Outcome[T] {
	return Outcome[T]{Success: true, Data: data, Message: message}
}

func Fail[T any](code, message string, details any) Outcome[T] {
	return Outcome[T]{Success: false, Code: code, Message: message, Details: details}
}

// backendError carries an error envelope returned by the backend inside a
// well-formed 2xx response.
type backendError struct {
	message string
}

func (e *backendError) Error() string { return e.message }

// classifyTransport maps a failed exchange (no usable response) onto the
// failure arm: deadline or cancellation becomes TIMEOUT, anything else is
// a network failure.
func classifyTransport[T any](ctx context.Context, err error) Outcome[T] {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return Fail[T](CodeTimeout, "trip generation timed out", nil)
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return Fail[T](CodeTimeout, "trip generation cancelled", nil)
	default:
		return Fail[T](CodeNetwork, "could not reach generation backend", err.Error())
	}
}

// classifyHTTP maps a non-2xx response onto the failure arm, preferring
// the code and message from the decoded body when present.
func classifyHTTP[T any](status int, body []byte) Outcome[T] {
	code := fmt.Sprintf("HTTP_%d", status)
	message := fmt.Sprintf("generation backend returned status %d", status)
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Code != "" {
			code = payload.Code
		}
		switch {
		case payload.Message != "":
			message = payload.Message
		case payload.Error != "":
			message = payload.Error
		}
	}
	return Fail[T](code, message, nil)
}
