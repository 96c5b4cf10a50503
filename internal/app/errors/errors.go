package errors

import (
	stderrors "errors"
	"fmt"
)

// Common error types
var (
	// Configuration errors
	ErrInvalidConfig  = New("invalid configuration")
	ErrEngineNotFound = New("engine not found")

	// Audio input errors
	ErrFileNotFound          = New("audio file not found")
	ErrInvalidAudio          = New("cannot load audio file")
	ErrEmptyAudio            = New("audio data is empty")
	ErrAudioTooLong          = New("audio duration exceeds maximum allowed")
	ErrInvalidSamples        = New("audio contains invalid values (NaN or Inf)")
	ErrUnsupportedSampleRate = New("unsupported sample rate")

	// Model errors
	ErrModelNotLoaded = New("model not loaded")
	ErrModelLoad      = New("model loading failed")
	ErrTranscription  = New("transcription error")
)

// validationErrors are the sentinels caused by bad caller input rather than by the
// service itself.
var validationErrors = []error{
	ErrFileNotFound,
	ErrInvalidAudio,
	ErrEmptyAudio,
	ErrAudioTooLong,
	ErrInvalidSamples,
	ErrUnsupportedSampleRate,
}

// Error represents a standardized error
type Error struct {
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Detail attaches a human readable detail to a sentinel, keeping it matchable with errors.Is.
//
//	errors.Detail(ErrAudioTooLong, "audio duration (301.00s) exceeds maximum allowed (300s)")
func Detail(sentinel *Error, format string, args ...interface{}) error {
	return &detailed{sentinel: sentinel, detail: fmt.Sprintf(format, args...)}
}

type detailed struct {
	sentinel *Error
	detail   string
}

func (d *detailed) Error() string { return d.detail }

func (d *detailed) Unwrap() error { return d.sentinel }

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message
}

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Wrapf(ErrInvalidConfig, "%s is required", field)
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return Wrapf(ErrInvalidConfig, "%s is invalid: %s", field, reason)
}

// OutOfRange returns an error for values outside acceptable range
func OutOfRange(field string, min, max interface{}) error {
	return Wrapf(ErrInvalidConfig, "%s out of range (must be between %v and %v)", field, min, max)
}

// IsValidationError reports whether err was caused by invalid caller input.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	for _, sentinel := range validationErrors {
		if stderrors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
