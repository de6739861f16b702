package errcode

import (
	"fmt"
	"net/http"
	"sort"
	"sync"
)

// Module codes used across the service.
const (
	ModuleCommon   = 1
	ModuleVehicle  = 20
	ModuleDatabase = 30
	ModuleRedis    = 40
	ModuleCache    = 70
)

// Common errors returned by the HTTP layer.
var (
	ErrBadRequest       = Register(New(ModuleCommon, 1, "common", "error.common.bad_request", "bad request", http.StatusBadRequest))
	ErrValidationFailed = Register(New(ModuleCommon, 10, "common", "error.common.validation_failed", "validation failed", http.StatusBadRequest))
	ErrNotFound         = Register(New(ModuleCommon, 404, "common", "error.common.not_found", "resource not found", http.StatusNotFound))
	ErrMethodNotAllowed = Register(New(ModuleCommon, 405, "common", "error.common.method_not_allowed", "method not allowed", http.StatusMethodNotAllowed))
	ErrInternal         = Register(New(ModuleCommon, 500, "common", "error.common.internal", "internal server error"))
)

// Registry guards against two errors claiming the same code.
type Registry struct {
	mu    sync.RWMutex
	codes map[int]string
}

var globalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{codes: make(map[int]string)}
}

// Register records err in the global registry and returns it, so it can be used
// directly in a var block. It panics when the code is already taken by another key.
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := err.Module() + ":" + err.MsgKey()
	if existing, ok := r.codes[err.Code()]; ok && existing != key {
		panic(fmt.Sprintf("error code %d already registered as %s, cannot register as %s",
			err.Code(), existing, key))
	}
	r.codes[err.Code()] = key
	return err
}

// Codes lists every registered code in ascending order.
func (r *Registry) Codes() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]int, 0, len(r.codes))
	for code := range r.codes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// Codes lists the codes registered in the global registry.
func Codes() []int {
	return globalRegistry.Codes()
}
