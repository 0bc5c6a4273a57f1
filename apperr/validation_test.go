package apperr_test

import (
	"testing"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationBuilder_Empty(t *testing.T) {
	err := apperr.NewValidationBuilder().Build()
	assert.NoError(t, err)
}

func TestValidationBuilder_CollectsAll(t *testing.T) {
	vb := apperr.NewValidationBuilder()
	vb.RequiredField("name").
		Field("strength", "must be between 3 and 18").
		Fieldf("strength", "got %d", 20)

	err := vb.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	fields := apperr.FieldErrors(err)
	assert.Equal(t, []string{"is required"}, fields["name"])
	assert.Equal(t, []string{"must be between 3 and 18", "got 20"}, fields["strength"])
}

func TestValidationError_MessageIsSorted(t *testing.T) {
	v := apperr.NewValidationError()
	v.AddFieldError("b", "two")
	v.AddFieldError("a", "one")
	assert.Equal(t, "validation failed: a: one; b: two", v.Error())
}

func TestValidate_RunsRulesInOrder(t *testing.T) {
	type input struct{ A, B int }
	var order []string
	rules := []apperr.Rule[input]{
		func(in input, vb *apperr.ValidationBuilder) {
			order = append(order, "a")
			apperr.ValidateRange(vb, "a", in.A, 1, 10)
		},
		func(in input, vb *apperr.ValidationBuilder) {
			order = append(order, "b")
			apperr.ValidateRange(vb, "b", in.B, 1, 10)
		},
	}

	err := apperr.Validate(input{A: 0, B: 11}, rules...)
	require.Error(t, err)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Len(t, apperr.FieldErrors(err), 2)

	assert.NoError(t, apperr.Validate(input{A: 3, B: 4}, rules...))
}

func TestValidateEnumAndMaxLength(t *testing.T) {
	vb := apperr.NewValidationBuilder()
	apperr.ValidateEnum(vb, "skill_type", "cooking", []string{"combat", "magic"})
	apperr.ValidateEnum(vb, "ok", "magic", []string{"combat", "magic"})
	apperr.ValidateMaxLength(vb, "bio", "ééé", 2)
	apperr.ValidateMaxLength(vb, "short", "ééé", 3)

	assert.True(t, vb.Has("skill_type"))
	assert.False(t, vb.Has("ok"))
	assert.True(t, vb.Has("bio"))
	assert.False(t, vb.Has("short"))
}

func TestFieldErrors_NonValidation(t *testing.T) {
	assert.Nil(t, apperr.FieldErrors(apperr.NotFoundf("x")))
	assert.Nil(t, apperr.FieldErrors(nil))
}
