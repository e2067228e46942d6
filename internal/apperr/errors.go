// Package apperr holds the error taxonomy shared by the services. Callers match
// kinds with errors.Is; only the HTTP layer turns them into status codes.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrInvalidRequest is returned when required caller input is missing.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnsupportedFormat is returned for uploads whose media type has no extractor.
	ErrUnsupportedFormat = errors.New("unsupported file type")

	// ErrExtractionEmpty is returned when a supported file yields no text.
	ErrExtractionEmpty = errors.New("no content could be extracted from the file")

	// ErrUnknownReference is returned when a chat names a document that was never uploaded.
	ErrUnknownReference = errors.New("unknown document reference")

	// ErrConfig is returned when a credential or key needed at call time is absent.
	ErrConfig = errors.New("server configuration error")

	// ErrNotFound is returned when a lookup has no match.
	ErrNotFound = errors.New("not found")

	// ErrUpstream is returned when a model, TTS or places call fails.
	ErrUpstream = errors.New("upstream service failure")

	// ErrEmptyModelReply is returned when the model answers with no text.
	ErrEmptyModelReply = errors.New("model returned an empty reply")

	// ErrSynthesisFailed is returned when speech synthesis yields no audio.
	ErrSynthesisFailed = errors.New("speech synthesis failed")
)

// Error tags a failure with the operation that produced it, its kind and
// the underlying cause (if any).
type Error struct {
	// Op is the operation that failed (e.g. "ChatService.Chat").
	Op string

	// Kind is one of the sentinel errors above.
	Kind error

	// Err is the underlying cause. May be nil.
	Err error

	// Details provides additional context.
	Details string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New creates an Error without an underlying cause.
func New(op string, kind error, details string) *Error {
	return &Error{Op: op, Kind: kind, Details: details}
}

// Newf is New with a formatted details string.
func Newf(op string, kind error, format string, args ...any) *Error {
	return New(op, kind, fmt.Sprintf(format, args...))
}

// Wrap tags err with op and kind. An error that already carries an apperr
// kind is returned unchanged so the innermost classification wins.
func Wrap(op string, kind error, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf reports the taxonomy kind carried by err, or nil.
func KindOf(err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	for _, kind := range []error{
		ErrInvalidRequest, ErrUnsupportedFormat, ErrExtractionEmpty, ErrUnknownReference,
		ErrConfig, ErrNotFound, ErrUpstream, ErrEmptyModelReply, ErrSynthesisFailed,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
