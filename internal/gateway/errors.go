package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
)

// Kind classifies a failed call.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindUnauthorized
	KindValidation
	KindNotFound
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	}
	return "unknown"
}

type kindError Kind

func (k kindError) Error() string { return "gateway: " + Kind(k).String() }

// Sentinels for errors.Is against an *APIError.
var (
	ErrTransport    error = kindError(KindTransport)
	ErrUnauthorized error = kindError(KindUnauthorized)
	ErrValidation   error = kindError(KindValidation)
	ErrNotFound     error = kindError(KindNotFound)
	ErrServer       error = kindError(KindServer)
)

const (
	genericServerMessage    = "Something went wrong. Please try again later."
	genericTransportMessage = "Unable to reach the planner service. Check your connection."
)

// APIError is the structured failure of every gateway call.
type APIError struct {
	Op      string
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Is(target error) bool {
	k, ok := target.(kindError)
	return ok && Kind(k) == e.Kind
}

// Message returns the text a user should see for err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return genericServerMessage
}

// HTTPStatus maps err to the status a companion handler should answer with.
func HTTPStatus(err error) int {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError
	}
	switch apiErr.Kind {
	case KindTransport:
		return http.StatusBadGateway
	case KindServer:
		return http.StatusBadGateway
	}
	return apiErr.Status
}

func classify(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

func newStatusError(op string, status int, body []byte, fallback string) *APIError {
	kind := classify(status)
	e := &APIError{Op: op, Kind: kind, Status: status}
	if kind == KindServer {
		e.Message = genericServerMessage
		return e
	}
	e.Message = extractMessage(body)
	if e.Message == "" {
		e.Message = fallback
	}
	return e
}

type errorBody struct {
	Detail  sonic.NoCopyRawMessage `json:"detail"`
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
}

type validationItem struct {
	Msg string `json:"msg"`
}

// extractMessage reads {"detail": "..."}, {"detail": [{"msg": ...}]} or {"error": "..."}.
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var b errorBody
	if err := sonic.Unmarshal(body, &b); err != nil {
		return ""
	}
	if len(b.Detail) > 0 {
		var s string
		if err := sonic.Unmarshal(b.Detail, &s); err == nil {
			return strings.TrimSpace(s)
		}
		var items []validationItem
		if err := sonic.Unmarshal(b.Detail, &items); err == nil && len(items) > 0 {
			return strings.TrimSpace(items[0].Msg)
		}
	}
	if b.Error != "" {
		return b.Error
	}
	return b.Message
}
