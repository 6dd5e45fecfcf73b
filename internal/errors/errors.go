package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError carries the machine-facing classification of a failure alongside
// the message shown to the user. None of these are fatal to the process: a
// single user's bad input or one failed append never takes the bot down.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// NewValidationError covers malformed user input: non-numeric amounts,
// wrong quick-add argument counts. Recovered locally by re-prompting.
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewRoutingError covers callback payloads that decode to no known action.
// The event is dropped; the user sees nothing.
func NewRoutingError(msg string) *AppError {
	return &AppError{
		Code:        "E200",
		Message:     msg,
		UserMessage: "",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewSinkError covers a failed ledger append. The draft is preserved so the
// user can retry, and the failure is surfaced rather than swallowed.
func NewSinkError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E300",
		Message:     fmt.Sprintf("ledger append failed: %s", underlyingMsg),
		UserMessage: "⚠️ Failed to save the transaction. Your draft is kept, please try again.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewStateError covers operations attempted in a conversation state that
// does not permit them.
func NewStateError(msg string) *AppError {
	return &AppError{
		Code:        "E400",
		Message:     msg,
		UserMessage: "That action is not available right now.",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       nil,
	}
}

// NewStorageError covers failures of the session stores (conversation state
// or draft). Usually transient Redis trouble.
func NewStorageError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E500",
		Message:     fmt.Sprintf("session storage error: %s", underlyingMsg),
		UserMessage: "Something went wrong, please try again later.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}
