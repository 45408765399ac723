package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	// ErrorKindHTTP is a non-2xx response from the API.
	ErrorKindHTTP ErrorKind = "http"
	// ErrorKindNoResponse means the request never got an answer (network,
	// DNS, timeout).
	ErrorKindNoResponse ErrorKind = "no_response"
	// ErrorKindSetup means the request could not be built.
	ErrorKindSetup ErrorKind = "setup"
	// ErrorKindUnexpectedShape is a 2xx response whose body is not the
	// documented envelope.
	ErrorKindUnexpectedShape ErrorKind = "unexpected_shape"
)

const unknownErrorMessage = "Unknown error"

type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Body       string

	cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrorKindHTTP:
		return fmt.Sprintf("Render API error (%d): %s", e.StatusCode, e.Message)
	case ErrorKindSetup:
		return "Error setting up request: " + e.Message
	case ErrorKindUnexpectedShape:
		return "Unexpected response shape from Render API: " + e.Message
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == ErrorKindHTTP && apiErr.StatusCode == 404
}

func httpError(status int, body []byte) *Error {
	apiErr := &Error{
		Kind:       ErrorKindHTTP,
		StatusCode: status,
		Message:    unknownErrorMessage,
		Body:       string(body),
	}

	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if msg := strings.TrimSpace(errResp.Message); msg != "" {
			apiErr.Message = msg
		} else if msg := strings.TrimSpace(errResp.Error); msg != "" {
			apiErr.Message = msg
		}
	}

	return apiErr
}

func setupError(err error) *Error {
	return &Error{Kind: ErrorKindSetup, Message: err.Error(), cause: err}
}

func unexpectedShape(detail string) *Error {
	return &Error{Kind: ErrorKindUnexpectedShape, Message: detail}
}
