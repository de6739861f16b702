package errcode

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayeredError_New(t *testing.T) {
	err := New(20, 1, "vehicle", "error.vehicle.invalid", "invalid vehicle", http.StatusBadRequest)

	assert.Equal(t, 200001, err.Code())
	assert.Equal(t, "vehicle", err.Module())
	assert.Equal(t, "error.vehicle.invalid", err.MsgKey())
	assert.Equal(t, "invalid vehicle", err.Message())
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}

func TestLayeredError_DefaultStatus(t *testing.T) {
	err := New(99, 1, "test", "error.test.internal", "internal error")
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestLayeredError_Wrap(t *testing.T) {
	base := New(99, 2, "test", "error.test.unavailable", "cache unavailable")
	cause := errors.New("dial tcp: connection refused")

	wrapped := base.Wrap(cause)

	assert.Equal(t, "cache unavailable: dial tcp: connection refused", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, base)
	assert.Nil(t, base.Cause(), "Wrap must not modify the receiver")
	assert.Same(t, base, base.Wrap(nil))
}

func TestLayeredError_IsThroughFmtWrap(t *testing.T) {
	base := New(99, 3, "test", "error.test.unavailable", "cache unavailable")
	err := fmt.Errorf("refresh: %w", base.WithMsg("redis down"))

	assert.True(t, errors.Is(err, base))
	assert.False(t, errors.Is(err, New(99, 4, "test", "error.test.other", "other")))

	var layered *LayeredError
	assert.True(t, errors.As(err, &layered))
	assert.Equal(t, "redis down", layered.Message())
}

func TestLayeredError_WithData(t *testing.T) {
	base := New(99, 5, "test", "error.test.validation_failed", "validation failed", http.StatusBadRequest)

	withField := base.WithData("field", "brand")
	withMore := withField.WithFields(map[string]interface{}{"kind": "missing_field"})

	assert.Empty(t, base.Data())
	assert.Equal(t, map[string]interface{}{"field": "brand"}, withField.Data())
	assert.Equal(t, map[string]interface{}{"field": "brand", "kind": "missing_field"}, withMore.Data())
}

func TestLayeredError_WithMsgfAndStatus(t *testing.T) {
	err := New(30, 1, "database", "error.database.query", "query failed").
		WithMsgf("query %s failed", "vehicle").
		WithHTTPStatus(http.StatusServiceUnavailable)

	assert.Equal(t, "query vehicle failed", err.Message())
	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus())
	assert.Contains(t, err.String(), "code:300001")
}

func TestLayeredError_Wrapf(t *testing.T) {
	cause := errors.New("boom")
	err := New(30, 1, "database", "error.database.query", "query failed").Wrapf(cause, "list %s", "vehicle")

	assert.Equal(t, "list vehicle: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}
