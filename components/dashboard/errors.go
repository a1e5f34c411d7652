package dashboard

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures surfaced by panels.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindFormat     ErrorKind = "format"
	KindNetwork    ErrorKind = "network"
)

// Sentinels for errors.Is checks against a PanelError kind.
var (
	ErrValidation = errors.New("dashboard: validation error")
	ErrNotFound   = errors.New("dashboard: not found")
	ErrFormat     = errors.New("dashboard: invalid format")
	ErrNetwork    = errors.New("dashboard: network error")
)

// User-facing messages.
const (
	MsgInvalidCustomerCode = "Please enter a valid Customer Code."
	MsgCustomerNotFound    = "Customer not found or invalid code."
	MsgInvalidFormat       = "Invalid data format received."
	MsgMissingParameters   = "Please select a cluster, year, and an aggregation function."
	MsgMissingSelection    = "Please select a metric and an aggregation function."
	MsgBackendUnavailable  = "Unable to reach the analytics service."
)

// PanelError is the single error type every panel surfaces.
type PanelError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *PanelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PanelError) Unwrap() error { return e.Err }

// Is matches the kind sentinels.
func (e *PanelError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrFormat:
		return e.Kind == KindFormat
	case ErrNetwork:
		return e.Kind == KindNetwork
	}
	return false
}

// NewValidationError builds a validation failure; no request is issued for these.
func NewValidationError(message string) *PanelError {
	return &PanelError{Kind: KindValidation, Message: message}
}

// NewNotFoundError wraps a non-success backend status.
func NewNotFoundError(message string, err error) *PanelError {
	return &PanelError{Kind: KindNotFound, Message: message, Err: err}
}

// NewFormatError wraps a malformed backend body.
func NewFormatError(message string, err error) *PanelError {
	return &PanelError{Kind: KindFormat, Message: message, Err: err}
}

// NewNetworkError wraps a rejected request.
func NewNetworkError(message string, err error) *PanelError {
	return &PanelError{Kind: KindNetwork, Message: message, Err: err}
}

// UserMessage returns the text shown to operators for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var panelErr *PanelError
	if errors.As(err, &panelErr) && panelErr.Message != "" {
		return panelErr.Message
	}
	return err.Error()
}

// KindOf returns the panel error kind, defaulting to network for foreign errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var panelErr *PanelError
	if errors.As(err, &panelErr) {
		return panelErr.Kind
	}
	return KindNetwork
}

// Severity controls how a panel surfaces fetch failures.
type Severity string

const (
	// SeverityInline shows the message in place of the result.
	SeverityInline Severity = "inline"
	// SeverityNotice shows a non-blocking notice next to the last result area.
	SeverityNotice Severity = "notice"
	// SeverityPrompt asks the client to show a blocking prompt.
	SeverityPrompt Severity = "prompt"
	// SeverityDiagnostic only logs the failure.
	SeverityDiagnostic Severity = "diagnostic"
)

// ParseSeverity parses a configured severity, falling back when empty or unknown.
func ParseSeverity(value string, fallback Severity) Severity {
	switch Severity(value) {
	case SeverityInline, SeverityNotice, SeverityPrompt, SeverityDiagnostic:
		return Severity(value)
	}
	return fallback
}

// HTTPStatus maps an operation error to a response status. Panel failures
// other than validation are part of the view and answer 200.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	}
	var panelErr *PanelError
	if errors.As(err, &panelErr) {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}
