package cache

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/KOMKZ/yogan-vehicle-api/errcode"
)

const (
	ErrCodeCacheUnavailable = 1
	ErrCodeSerialize        = 2
	ErrCodeDeserialize      = 3
	ErrCodeConfigInvalid    = 4
	ErrCodeStoreFailed      = 5
)

var (
	// ErrCacheUnavailable wraps every backend failure reported by a Store.
	ErrCacheUnavailable = errcode.Register(errcode.New(
		errcode.ModuleCache, ErrCodeCacheUnavailable,
		"cache", "error.cache.unavailable", "cache unavailable",
		http.StatusServiceUnavailable,
	))

	ErrSerialize = errcode.Register(errcode.New(
		errcode.ModuleCache, ErrCodeSerialize,
		"cache", "error.cache.serialize", "serialize snapshot failed",
	))

	ErrDeserialize = errcode.Register(errcode.New(
		errcode.ModuleCache, ErrCodeDeserialize,
		"cache", "error.cache.deserialize", "deserialize snapshot failed",
	))

	ErrConfigInvalid = errcode.Register(errcode.New(
		errcode.ModuleCache, ErrCodeConfigInvalid,
		"cache", "error.cache.config_invalid", "invalid cache config",
	))
)

// unavailable wraps a backend failure of op.
func unavailable(op string, err error) error {
	return ErrCacheUnavailable.WithMsgf("cache %s failed", op).Wrap(err)
}

// StoreError is a failure of the durable repository. It is always returned to
// the caller and unwraps to the repository's own error.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err carries a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

func wrapStoreError(op string, err error) error {
	if err == nil || IsStoreError(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// ErrStoreFailed is the HTTP-facing form of every *StoreError.
var ErrStoreFailed = errcode.Register(errcode.New(
	errcode.ModuleCache, ErrCodeStoreFailed,
	"cache", "error.cache.store_failed", "store operation failed",
	http.StatusInternalServerError,
))

// Layered reports the failure as a 500 carrying the failed operation.
func (e *StoreError) Layered() *errcode.LayeredError {
	return ErrStoreFailed.WithMsgf("store %s failed", e.Op).WithData("op", e.Op).Wrap(e.Err)
}
