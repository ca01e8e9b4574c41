package obs

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CircuitState is the state of a CircuitBreaker guarding calls to a KV
// backend (spec.md §6's "untrusted" backend, §7's BackendTransient).
type CircuitState int

const (
	// CircuitClosed - normal operation, backend calls are allowed.
	CircuitClosed CircuitState = iota
	// CircuitOpen - the backend has been failing; calls are rejected
	// locally without reaching it.
	CircuitOpen
	// CircuitHalfOpen - probing whether the backend has recovered.
	CircuitHalfOpen
)

func (cs CircuitState) String() string {
	switch cs {
	case CircuitClosed:
		return "CLOSED"
	case CircuitOpen:
		return "OPEN"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	// Name identifies the backend this breaker guards, surfaced in the
	// error returned when a call is rejected and passed to the
	// OnStateChange callback.
	Name string

	// MaxFailures is the number of failures before opening the circuit.
	MaxFailures int

	// Timeout is how long to wait before probing a half-open circuit.
	Timeout time.Duration

	// MaxRequests is the number of probe requests allowed while
	// half-open.
	MaxRequests int

	// FailureThreshold is the failure rate (0.0-1.0) that opens the
	// circuit once MinRequests have been observed.
	FailureThreshold float64

	// MinRequests is the minimum request count before FailureThreshold
	// is evaluated.
	MinRequests int

	// ResetTimeout is how long a closed circuit's counters stay live
	// before resetting to a fresh generation.
	ResetTimeout time.Duration
}

// DefaultCircuitBreakerConfig returns sensible defaults for guarding a KV
// backend: five failures within one 60-second generation (successes in
// between do not reset the count), or a 60% failure rate over at least 10
// requests, opens the circuit for 30 seconds.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		MaxRequests:      3,
		FailureThreshold: 0.6,
		MinRequests:      10,
		ResetTimeout:     60 * time.Second,
	}
}

// CircuitBreaker wraps calls to a single KV backend with the circuit
// breaker pattern, so a backend in persistent failure stops being hit on
// every insert/search once it is clearly down (spec.md §7's
// BackendTransient handling: surfaced to the caller, not retried
// internally — the breaker only governs whether a call is attempted at
// all). A DB creates exactly one CircuitBreaker for its one backend and
// shares it across every Index it opens; unlike the teacher's
// CircuitBreakerManager, which indexed breakers by name for an arbitrary
// number of guarded services, nothing in this module needs more than one
// breaker per backend, so that registry is not carried over.
type CircuitBreaker struct {
	mu     sync.RWMutex
	config CircuitBreakerConfig
	state  CircuitState

	failures   int
	successes  int
	requests   int
	generation int64

	lastFailureTime time.Time
	lastSuccessTime time.Time
	expiry          time.Time

	onStateChange func(name string, from, to CircuitState)
}

// NewCircuitBreaker creates a closed CircuitBreaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		config: config,
		state:  CircuitClosed,
		expiry: time.Now().Add(config.ResetTimeout),
	}
}

// Execute runs fn if the circuit allows it, recording the outcome.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	generation, err := cb.beforeRequest()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			cb.afterRequest(generation, fmt.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	err = fn()
	cb.afterRequest(generation, err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() (int64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)

	if state == CircuitOpen {
		return generation, fmt.Errorf("circuit breaker %q is open", cb.config.Name)
	}
	if state == CircuitHalfOpen && cb.requests >= cb.config.MaxRequests {
		return generation, fmt.Errorf("circuit breaker %q is half-open and probe budget is exhausted", cb.config.Name)
	}

	cb.requests++
	return generation, nil
}

func (cb *CircuitBreaker) afterRequest(generation int64, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, currentGeneration := cb.currentState(now)
	if generation != currentGeneration {
		return
	}

	if err != nil {
		cb.onFailure(state, now)
	} else {
		cb.onSuccess(state, now)
	}
}

func (cb *CircuitBreaker) onFailure(state CircuitState, now time.Time) {
	cb.failures++
	cb.lastFailureTime = now

	switch state {
	case CircuitClosed:
		if cb.shouldOpen(now) {
			cb.setState(CircuitOpen, now)
		}
	case CircuitHalfOpen:
		cb.setState(CircuitOpen, now)
	}
}

func (cb *CircuitBreaker) onSuccess(state CircuitState, now time.Time) {
	cb.successes++
	cb.lastSuccessTime = now

	if state == CircuitHalfOpen && cb.successes >= cb.config.MaxRequests {
		cb.setState(CircuitClosed, now)
	}
}

func (cb *CircuitBreaker) shouldOpen(now time.Time) bool {
	if cb.failures >= cb.config.MaxFailures {
		return true
	}
	if cb.requests >= cb.config.MinRequests {
		return float64(cb.failures)/float64(cb.requests) >= cb.config.FailureThreshold
	}
	return false
}

func (cb *CircuitBreaker) currentState(now time.Time) (CircuitState, int64) {
	switch cb.state {
	case CircuitClosed:
		if cb.expiry.Before(now) {
			cb.toNewGeneration(now)
		}
	case CircuitOpen:
		if cb.expiry.Before(now) {
			cb.setState(CircuitHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state CircuitState, now time.Time) {
	if cb.state == state {
		return
	}
	prev := cb.state
	cb.state = state
	cb.toNewGeneration(now)
	if cb.onStateChange != nil {
		cb.onStateChange(cb.config.Name, prev, state)
	}
}

func (cb *CircuitBreaker) toNewGeneration(now time.Time) {
	cb.generation++
	cb.requests = 0
	cb.failures = 0
	cb.successes = 0

	var timeout time.Duration
	switch cb.state {
	case CircuitClosed:
		timeout = cb.config.ResetTimeout
	case CircuitOpen, CircuitHalfOpen:
		timeout = cb.config.Timeout
	}
	cb.expiry = now.Add(timeout)
}

// State returns the breaker's current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	state, _ := cb.currentState(time.Now())
	return state
}

// Counts returns the current generation's failure, success, and request
// counts.
func (cb *CircuitBreaker) Counts() (failures, successes, requests int) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failures, cb.successes, cb.requests
}

// OnStateChange registers a callback invoked whenever the breaker
// transitions state.
func (cb *CircuitBreaker) OnStateChange(fn func(name string, from, to CircuitState)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Reset forces the breaker back to closed, e.g. after an operator has
// confirmed the backend recovered.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.setState(CircuitClosed, time.Now())
}
