package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_HTTPStatus(t *testing.T) {
	cases := map[apperr.Code]int{
		apperr.CodeValidation:             http.StatusBadRequest,
		apperr.CodeLimitExceeded:          http.StatusBadRequest,
		apperr.CodeInsufficientExperience: http.StatusBadRequest,
		apperr.CodeDuplicateName:          http.StatusConflict,
		apperr.CodeDuplicateSkill:         http.StatusConflict,
		apperr.CodeConflict:               http.StatusConflict,
		apperr.CodeNotFound:               http.StatusNotFound,
		apperr.CodeUnauthenticated:        http.StatusUnauthorized,
		apperr.CodeAccountDisabled:        http.StatusForbidden,
		apperr.CodeInternal:               http.StatusInternalServerError,
		apperr.Code("SOMETHING_ELSE"):     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), code)
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := apperr.LimitExceeded(5)
	assert.ErrorIs(t, err, apperr.ErrLimitExceeded)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)

	wrapped := fmt.Errorf("create: %w", err)
	assert.ErrorIs(t, wrapped, apperr.ErrLimitExceeded)
	assert.Equal(t, apperr.CodeLimitExceeded, apperr.CodeOf(wrapped))
}

func TestWrap_ForeignErrorBecomesInternal(t *testing.T) {
	cause := errors.New("disk on fire")
	err := apperr.Wrap(cause, "load character")

	assert.Equal(t, apperr.CodeInternal, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestWrap_KeepsCodeAndMeta(t *testing.T) {
	inner := apperr.InsufficientExperience(1000, 1)
	err := apperr.Wrap(inner, "level up")

	assert.Equal(t, apperr.CodeInsufficientExperience, err.Code)
	assert.Equal(t, int64(1), err.Meta["shortfall"])
	assert.Equal(t, int64(1000), err.Meta["required"])
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, apperr.Wrap(nil, "nothing"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, apperr.Code(""), apperr.CodeOf(nil))
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(errors.New("x")))
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(apperr.NotFoundf("race %q", "balrog")))
}

func TestMetaOf(t *testing.T) {
	meta := apperr.MetaOf(apperr.DuplicateName("Frodo"))
	require.NotNil(t, meta)
	assert.Equal(t, "Frodo", meta["name"])
	assert.Nil(t, apperr.MetaOf(errors.New("plain")))
}
