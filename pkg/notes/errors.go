package notes

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary
type Kind int

const (
	KindInternal    Kind = iota // Unclassified failure
	KindValidation              // A required field is missing or malformed
	KindNotFound                // The referenced record does not exist
	KindUpstream                // The transcription or generative-AI backend failed
	KindPersistence             // The store rejected or failed an operation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindPersistence:
		return "persistence"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to its response status
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Op names the workflow operation that failed
type Op string

const (
	OpUpload         Op = "upload"
	OpSaveTranscript Op = "save-transcript"
	OpInsight        Op = "insight"
	OpSaveSummary    Op = "save-summary"
	OpList           Op = "list"
	OpGet            Op = "get"
	OpDelete         Op = "delete"
)

// Error is the error type returned by the workflow. Message is safe to show
// to callers; Err carries the detail that only goes to the logs
type Error struct {
	Kind    Kind
	Op      Op
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Op, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%s): %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// PublicMessage returns the caller-facing message. Upstream and persistence
// failures collapse to a generic text so backend details never leak
func (e *Error) PublicMessage() string {
	switch e.Kind {
	case KindValidation, KindNotFound:
		return e.Message
	default:
		return "Internal server error"
	}
}

// ValidationError reports a missing or malformed input
func ValidationError(op Op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// NotFoundError reports an unknown record
func NotFoundError(op Op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

// UpstreamError reports a failing or empty backend response
func UpstreamError(op Op, message string, err error) *Error {
	return &Error{Kind: KindUpstream, Op: op, Message: message, Err: err}
}

// PersistenceError reports a failing store operation
func PersistenceError(op Op, message string, err error) *Error {
	return &Error{Kind: KindPersistence, Op: op, Message: message, Err: err}
}

// UploadError is the upstream failure of the transcribe step
func UploadError(message string, err error) *Error {
	return UpstreamError(OpUpload, message, err)
}

// InsightError is the upstream failure of the insight step
func InsightError(message string, err error) *Error {
	return UpstreamError(OpInsight, message, err)
}

// KindOf returns the kind of err, or KindInternal for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
