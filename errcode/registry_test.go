package errcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	a := New(90, 1, "test", "error.test.a", "a")
	assert.Same(t, a, r.Register(a))

	// same code and key is idempotent
	assert.NotPanics(t, func() { r.Register(New(90, 1, "test", "error.test.a", "a again")) })

	assert.Panics(t, func() { r.Register(New(90, 1, "test", "error.test.b", "b")) })

	r.Register(New(90, 3, "test", "error.test.c", "c"))
	assert.Equal(t, []int{900001, 900003}, r.Codes())
}

func TestGlobalRegistry_CommonErrors(t *testing.T) {
	assert.Contains(t, Codes(), ErrValidationFailed.Code())
	assert.Contains(t, Codes(), ErrInternal.Code())
}
