package apperr

import "net/http"

// Code classifies an Error.
type Code string

const (
	CodeValidation             Code = "VALIDATION_FAILED"
	CodeDuplicateName          Code = "DUPLICATE_NAME"
	CodeDuplicateSkill         Code = "DUPLICATE_SKILL"
	CodeNotFound               Code = "NOT_FOUND"
	CodeLimitExceeded          Code = "LIMIT_EXCEEDED"
	CodeInsufficientExperience Code = "INSUFFICIENT_EXPERIENCE"
	CodeUnauthenticated        Code = "UNAUTHENTICATED"
	CodeAccountDisabled        Code = "ACCOUNT_DISABLED"
	CodeConflict               Code = "CONFLICT"
	CodeInternal               Code = "INTERNAL"
)

// HTTPStatus maps the code onto a response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeLimitExceeded, CodeInsufficientExperience:
		return http.StatusBadRequest
	case CodeDuplicateName, CodeDuplicateSkill, CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeAccountDisabled:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (c Code) String() string { return string(c) }
