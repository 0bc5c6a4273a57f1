package apperr

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// MetaFields is the metadata key holding the field -> messages map of a
// validation failure.
const MetaFields = "fields"

// ValidationError collects messages per field.
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (v *ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, strings.Join(v.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v *ValidationError) AddFieldError(field, message string) {
	v.Fields[field] = append(v.Fields[field], message)
}

func (v *ValidationError) HasErrors() bool { return len(v.Fields) > 0 }

// ToError converts to a VALIDATION_FAILED *Error, nil when empty.
func (v *ValidationError) ToError() *Error {
	if !v.HasErrors() {
		return nil
	}
	return New(CodeValidation, v.Error()).WithMeta(MetaFields, v.Fields)
}

// ValidationBuilder accumulates field errors.
type ValidationBuilder struct {
	err *ValidationError
}

func NewValidationBuilder() *ValidationBuilder {
	return &ValidationBuilder{err: NewValidationError()}
}

func (vb *ValidationBuilder) Field(field, message string) *ValidationBuilder {
	vb.err.AddFieldError(field, message)
	return vb
}

func (vb *ValidationBuilder) Fieldf(field, format string, args ...any) *ValidationBuilder {
	vb.err.AddFieldError(field, fmt.Sprintf(format, args...))
	return vb
}

func (vb *ValidationBuilder) RequiredField(field string) *ValidationBuilder {
	return vb.Field(field, "is required")
}

// Has reports whether field already has an error.
func (vb *ValidationBuilder) Has(field string) bool {
	return len(vb.err.Fields[field]) > 0
}

func (vb *ValidationBuilder) HasErrors() bool { return vb.err.HasErrors() }

// Build returns nil when nothing was collected. The nil check matters: a nil
// *Error stored in an error interface is not a nil error.
func (vb *ValidationBuilder) Build() error {
	if !vb.err.HasErrors() {
		return nil
	}
	return vb.err.ToError()
}

// Rule inspects an input and reports problems into the builder.
type Rule[T any] func(in T, vb *ValidationBuilder)

// Validate runs rules in order against in and returns the combined failure.
func Validate[T any](in T, rules ...Rule[T]) error {
	vb := NewValidationBuilder()
	for _, r := range rules {
		r(in, vb)
	}
	return vb.Build()
}

// ValidateRange reports value outside [lo, hi].
func ValidateRange(vb *ValidationBuilder, field string, value, lo, hi int) {
	if value < lo || value > hi {
		vb.Fieldf(field, "must be between %d and %d", lo, hi)
	}
}

// ValidateEnum reports value not in allowed.
func ValidateEnum(vb *ValidationBuilder, field, value string, allowed []string) {
	if !slices.Contains(allowed, value) {
		vb.Fieldf(field, "must be one of: %s", strings.Join(allowed, ", "))
	}
}

// ValidateMaxLength reports strings longer than max runes.
func ValidateMaxLength(vb *ValidationBuilder, field, value string, max int) {
	if len([]rune(value)) > max {
		vb.Fieldf(field, "must be at most %d characters", max)
	}
}

// FieldErrors returns the field map of a validation failure.
func FieldErrors(err error) map[string][]string {
	var e *Error
	if !errors.As(err, &e) || e.Code != CodeValidation {
		return nil
	}
	fields, _ := e.Meta[MetaFields].(map[string][]string)
	return fields
}
