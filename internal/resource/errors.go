package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind classifies a failed operation.
type Kind string

const (
	KindNetwork           Kind = "network"
	KindHTTPStatus        Kind = "http_status"
	KindMalformedResponse Kind = "malformed_response"
	KindValidation        Kind = "validation"
	KindCanceled          Kind = "canceled"
)

var (
	ErrMissingID      = errors.New("id is required")
	ErrFileNotAllowed = errors.New("endpoint does not accept file uploads")
)

// Error is returned by every client operation. Message is safe to show to
// users; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Fields  map[string]string
	Body    string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var re *Error
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	return KindOf(err) == KindHTTPStatus && StatusOf(err) == http.StatusNotFound
}

func networkError(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Message: "network error: " + err.Error(), Err: err}
}

func canceledError(op string, err error) *Error {
	return &Error{Kind: KindCanceled, Op: op, Message: "request canceled", Err: err}
}

func malformedError(op string, status int, body []byte, err error) *Error {
	return &Error{
		Kind:    KindMalformedResponse,
		Op:      op,
		Status:  status,
		Message: fmt.Sprintf("server responded unexpectedly (HTTP %d)", status),
		Body:    snippet(body),
		Err:     err,
	}
}

func statusError(op string, status int, body []byte) *Error {
	return &Error{
		Kind:    KindHTTPStatus,
		Op:      op,
		Status:  status,
		Message: ErrorMessage(status, body),
		Body:    snippet(body),
	}
}

// ValidationError builds a client-side validation failure.
func ValidationError(op string, err error) *Error {
	fields := map[string]string{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		names := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
			names = append(names, fe.Field())
		}
		return &Error{
			Kind:    KindValidation,
			Op:      op,
			Message: "invalid " + strings.Join(names, ", "),
			Fields:  fields,
			Err:     err,
		}
	}

	return &Error{Kind: KindValidation, Op: op, Message: err.Error(), Fields: fields, Err: err}
}

// ErrorMessage extracts a best-effort message from an error body. It
// understands {"message": "..."}, {"error": {"message": "..."}} and
// {"error": "..."}; anything else falls back to "HTTP <status>".
func ErrorMessage(status int, body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := stringField(payload["message"]); msg != "" {
			return msg
		}
		if raw, ok := payload["error"]; ok {
			if msg := stringField(raw); msg != "" {
				return msg
			}
			var nested map[string]json.RawMessage
			if json.Unmarshal(raw, &nested) == nil {
				if msg := stringField(nested["message"]); msg != "" {
					return msg
				}
			}
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max]
	}
	return s
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	default:
		return "Invalid value"
	}
}
