package cache

import (
	"context"
	"fmt"
	"time"
)

const healthProbeKey = "health:probe"

// HealthChecker writes and deletes a probe key. It fails when the backend is
// unreachable even though the coordinator would keep serving from the repository.
type HealthChecker struct {
	store Store
}

func NewHealthChecker(store Store) *HealthChecker {
	return &HealthChecker{store: store}
}

func (h *HealthChecker) Name() string {
	return "cache"
}

func (h *HealthChecker) Check(ctx context.Context) error {
	if h.store == nil {
		return fmt.Errorf("cache store not initialized")
	}
	if err := h.store.Set(ctx, healthProbeKey, []byte("ok"), 10*time.Second); err != nil {
		return err
	}
	return h.store.Delete(ctx, healthProbeKey)
}
