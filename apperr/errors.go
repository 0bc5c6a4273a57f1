package apperr

import (
	"errors"
	"fmt"
)

// Error is a coded failure with optional cause and metadata.
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithMeta attaches a metadata entry and returns e.
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// Sentinels for errors.Is checks. Never return these directly; they are
// shared values.
var (
	ErrValidation             = &Error{Code: CodeValidation}
	ErrDuplicateName          = &Error{Code: CodeDuplicateName}
	ErrDuplicateSkill         = &Error{Code: CodeDuplicateSkill}
	ErrNotFound               = &Error{Code: CodeNotFound}
	ErrLimitExceeded          = &Error{Code: CodeLimitExceeded}
	ErrInsufficientExperience = &Error{Code: CodeInsufficientExperience}
	ErrUnauthenticated        = &Error{Code: CodeUnauthenticated}
	ErrAccountDisabled        = &Error{Code: CodeAccountDisabled}
	ErrConflict               = &Error{Code: CodeConflict}
	ErrInternal               = &Error{Code: CodeInternal}
)

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps the code of an existing *Error and otherwise classifies err as
// INTERNAL. The original error stays reachable through Unwrap.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: message, Cause: err, Meta: existing.Meta}
	}
	return &Error{Code: CodeInternal, Message: message, Cause: err}
}

func Wrapf(err error, format string, args ...any) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

func DuplicateName(name string) *Error {
	return Newf(CodeDuplicateName, "you already have an active character named %q", name).
		WithMeta("name", name)
}

func DuplicateSkill(name string) *Error {
	return Newf(CodeDuplicateSkill, "character already knows skill %q", name).
		WithMeta("name", name)
}

func LimitExceeded(max int) *Error {
	return Newf(CodeLimitExceeded, "maximum of %d active characters reached", max).
		WithMeta("max", max)
}

// InsufficientExperience reports how much experience is still missing for the
// next level.
func InsufficientExperience(required, shortfall int64) *Error {
	return Newf(CodeInsufficientExperience, "%d more experience needed to level up", shortfall).
		WithMeta("required", required).
		WithMeta("shortfall", shortfall)
}

func Unauthenticated(message string) *Error {
	return New(CodeUnauthenticated, message)
}

func AccountDisabled() *Error {
	return New(CodeAccountDisabled, "account is disabled")
}

func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

// Internal wraps an infrastructure failure.
func Internal(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, Cause: cause}
}

// CodeOf extracts the code of err, INTERNAL for foreign errors and "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MetaOf returns the metadata of err, if any.
func MetaOf(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Meta
	}
	return nil
}
