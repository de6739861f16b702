package validator

import (
	"errors"
	"net/http"
	"testing"

	"github.com/KOMKZ/yogan-vehicle-api/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Label string
	Color string
	Year  int
}

func (s sample) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Label, validation.Required, NotBlank),
		validation.Field(&s.Year, validation.Min(1886)),
	)
}

type plainFailure struct{}

func (plainFailure) Validate() error { return errors.New("boom") }

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(sample{Label: "Toyota", Year: 2020}))
	assert.NoError(t, Validate(sample{Label: "Toyota"}), "zero year is skipped by Min")
}

func TestValidate_MissingField(t *testing.T) {
	for _, label := range []string{"", "   ", "\t"} {
		err := Validate(sample{Label: label})

		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "label %q", label)
		assert.Equal(t, "Label", verr.Field)
		assert.Equal(t, KindMissingField, verr.Kind)
		assert.Equal(t, "cannot be blank", verr.Message)
		assert.ErrorIs(t, err, errcode.ErrValidationFailed)
	}
}

func TestValidate_InvalidValueAndOrdering(t *testing.T) {
	err := Validate(sample{Label: "", Year: 1500})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Label", verr.Field, "first field alphabetically")
	assert.Len(t, verr.Fields, 2)

	err = Validate(sample{Label: "ok", Year: 1500})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Year", verr.Field)
	assert.Equal(t, KindInvalidValue, verr.Kind)
}

func TestValidate_PassesOtherErrors(t *testing.T) {
	err := Validate(plainFailure{})
	assert.EqualError(t, err, "boom")

	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestPositiveID(t *testing.T) {
	assert.NoError(t, PositiveID("id", 1))
	assert.NoError(t, PositiveID("id", 42))

	for _, id := range []int64{0, -1, -5} {
		err := PositiveID("id", id)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "id %d", id)
		assert.Equal(t, "id", verr.Field)
		assert.Equal(t, KindInvalidID, verr.Kind)
		assert.Equal(t, "must be greater than zero", verr.Message)
	}
}

func TestValidationError_Layered(t *testing.T) {
	layered := NilItem("vehicle").Layered()

	assert.Equal(t, http.StatusBadRequest, layered.HTTPStatus())
	assert.Equal(t, errcode.ErrValidationFailed.Code(), layered.Code())
	assert.Equal(t, "vehicle: is required", layered.Message())
	assert.Equal(t, "vehicle", layered.Data()["field"])
	assert.Equal(t, "nil_item", layered.Data()["kind"])
}

func TestFromErrors_Empty(t *testing.T) {
	assert.NoError(t, FromErrors(validation.Errors{"a": nil}))
}
