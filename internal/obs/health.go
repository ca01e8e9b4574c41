package obs

import (
	"context"
	"fmt"
)

// CheckResult is the outcome of a single named health check.
type CheckResult struct {
	Healthy bool
	Message string
}

// HealthStatus is the aggregate result of a HealthChecker.Check call.
type HealthStatus struct {
	Status string
	Checks map[string]*CheckResult
}

// HealthChecker reports whether an Index's backend is reachable, using the
// same CircuitBreaker an Index guards its backend calls with rather than
// issuing its own probe call against the backend (spec.md §6/§7: the
// breaker already tracks backend health as a side effect of normal
// traffic).
type HealthChecker struct {
	breaker *CircuitBreaker
}

// NewHealthChecker returns a HealthChecker reading breaker's state. breaker
// may be nil, in which case Check always reports healthy (no breaker
// configured means the backend is called directly, uncircuited).
func NewHealthChecker(breaker *CircuitBreaker) *HealthChecker {
	return &HealthChecker{breaker: breaker}
}

// Check reports the backend's health as observed by the circuit breaker.
// It never calls the backend itself.
func (hc *HealthChecker) Check(ctx context.Context) (*HealthStatus, error) {
	if hc.breaker == nil {
		return &HealthStatus{
			Status: "healthy",
			Checks: map[string]*CheckResult{
				"backend": {Healthy: true, Message: "circuit breaker not configured"},
			},
		}, nil
	}

	state := hc.breaker.State()
	failures, successes, requests := hc.breaker.Counts()

	healthy := state != CircuitOpen
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	} else if state == CircuitHalfOpen {
		status = "degraded"
	}

	return &HealthStatus{
		Status: status,
		Checks: map[string]*CheckResult{
			"backend": {
				Healthy: healthy,
				Message: circuitMessage(state, failures, successes, requests),
			},
		},
	}, nil
}

func circuitMessage(state CircuitState, failures, successes, requests int) string {
	switch state {
	case CircuitOpen:
		return "circuit breaker open: backend calls are being rejected locally"
	case CircuitHalfOpen:
		return "circuit breaker half-open: probing backend recovery"
	default:
		if requests == 0 {
			return "circuit breaker closed: no requests observed yet"
		}
		return fmt.Sprintf("circuit breaker closed: %d failures, %d successes of %d requests", failures, successes, requests)
	}
}
