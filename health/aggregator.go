package health

import (
	"context"
	"sync"
	"time"
)

// Aggregator runs every registered check concurrently under one timeout.
// A failing critical check makes the service unhealthy; a failing optional
// check only degrades it.
type Aggregator struct {
	mu       sync.RWMutex
	checks   []registered
	timeout  time.Duration
	metadata map[string]interface{}
}

type registered struct {
	checker  Checker
	critical bool
}

func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{
		timeout:  timeout,
		metadata: make(map[string]interface{}),
	}
}

// Register adds a critical check.
func (a *Aggregator) Register(c Checker) {
	a.add(c, true)
}

// RegisterOptional adds a check whose failure only degrades the service.
func (a *Aggregator) RegisterOptional(c Checker) {
	a.add(c, false)
}

func (a *Aggregator) add(c Checker, critical bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checks = append(a.checks, registered{checker: c, critical: critical})
}

func (a *Aggregator) SetMetadata(key string, value interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metadata[key] = value
}

func (a *Aggregator) Check(ctx context.Context) *Response {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.mu.RLock()
	checks := append([]registered(nil), a.checks...)
	metadata := make(map[string]interface{}, len(a.metadata))
	for k, v := range a.metadata {
		metadata[k] = v
	}
	a.mu.RUnlock()

	results := make(chan CheckResult, len(checks))
	for _, r := range checks {
		go func(r registered) {
			results <- runCheck(ctx, r)
		}(r)
	}

	resp := &Response{
		Status:   StatusHealthy,
		Checks:   make(map[string]CheckResult, len(checks)),
		Metadata: metadata,
	}
	for range checks {
		res := <-results
		resp.Checks[res.Name] = res
		switch {
		case res.Status == StatusUnhealthy:
			resp.Status = StatusUnhealthy
		case res.Status == StatusDegraded && resp.Status == StatusHealthy:
			resp.Status = StatusDegraded
		}
	}
	resp.Timestamp = time.Now()
	resp.Duration = time.Since(start)
	return resp
}

func runCheck(ctx context.Context, r registered) CheckResult {
	start := time.Now()
	res := CheckResult{
		Name:      r.checker.Name(),
		Status:    StatusHealthy,
		Critical:  r.critical,
		Timestamp: start,
	}
	if err := r.checker.Check(ctx); err != nil {
		res.Error = err.Error()
		res.Status = StatusDegraded
		if r.critical {
			res.Status = StatusUnhealthy
		}
	}
	res.Duration = time.Since(start)
	return res
}
