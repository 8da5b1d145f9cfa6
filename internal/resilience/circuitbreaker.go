// Package resilience guards calls to model backends with circuit breakers
// and ordered failover.
//
// [CircuitBreaker] is a three-state breaker (closed, open, half-open); a
// backend that keeps failing is cut off for a cool-down period instead of
// being hammered on every completion cycle. [FallbackGroup] chains several
// backends behind per-backend breakers, and [LLMFallback] packages that as
// an [llm.Provider] so the agent loop never sees the failover.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by [CircuitBreaker.Execute] while the breaker
// is open and the cool-down has not elapsed. The guarded function is not
// called in that case.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Breaker defaults, used when the corresponding config field is zero.
const (
	defaultMaxFailures  = 5
	defaultResetTimeout = 30 * time.Second
	defaultHalfOpenMax  = 3
)

// State is a circuit breaker operating mode.
type State int

const (
	// StateClosed forwards every call. Consecutive failures are counted.
	StateClosed State = iota

	// StateOpen rejects every call with [ErrCircuitOpen] until the reset
	// timeout elapses.
	StateOpen

	// StateHalfOpen forwards a bounded number of probe calls. Enough
	// successes close the breaker; a single failure re-opens it.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// CircuitBreakerConfig tunes a [CircuitBreaker]. Zero fields fall back to
// package defaults.
type CircuitBreakerConfig struct {
	// Name labels the guarded backend in logs and transition callbacks.
	Name string

	// MaxFailures is the consecutive-failure count that opens the breaker.
	MaxFailures int

	// ResetTimeout is the cool-down before an open breaker allows probes.
	ResetTimeout time.Duration

	// HalfOpenMax bounds the probe calls permitted while half-open.
	HalfOpenMax int

	// OnTransition, when set, is invoked on every state change with the
	// breaker name and the states involved. It runs while the breaker's
	// lock is held; keep it fast and non-blocking.
	OnTransition func(name string, from, to State)
}

// CircuitBreaker cuts off a failing backend after too many consecutive
// failures and probes it again after a cool-down. Safe for concurrent use.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu         sync.Mutex
	state      State
	failures   int       // consecutive failures while closed
	lastFailAt time.Time // set on every failure; drives the cool-down
	probes     int       // calls admitted while half-open
	probeFails int       // failed probes while half-open
}

// NewCircuitBreaker returns a closed breaker with defaults applied for any
// zero config field.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaultMaxFailures
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = defaultResetTimeout
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = defaultHalfOpenMax
	}
	return &CircuitBreaker{cfg: cfg}
}

// Execute runs fn unless the breaker rejects the call. Open breakers return
// [ErrCircuitOpen] without invoking fn; half-open breakers admit at most
// HalfOpenMax probes. fn's error is returned unchanged.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastFailAt) < cb.cfg.ResetTimeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.transition(StateHalfOpen)
		cb.probes = 0
		cb.probeFails = 0
	case StateHalfOpen:
		if cb.probes >= cb.cfg.HalfOpenMax {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
	}
	probing := cb.state == StateHalfOpen
	if probing {
		cb.probes++
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.onFailure(probing)
	} else {
		cb.onSuccess(probing)
	}
	return err
}

// onFailure updates failure accounting. Caller holds cb.mu.
func (cb *CircuitBreaker) onFailure(probing bool) {
	cb.lastFailAt = time.Now()

	if probing {
		// One failed probe is enough evidence the backend is still down.
		cb.probeFails++
		cb.failures = cb.cfg.MaxFailures
		cb.transition(StateOpen)
		slog.Warn("circuit breaker re-opened after failed probe",
			"backend", cb.cfg.Name)
		return
	}

	cb.failures++
	if cb.state == StateClosed && cb.failures >= cb.cfg.MaxFailures {
		cb.transition(StateOpen)
		slog.Warn("circuit breaker opened",
			"backend", cb.cfg.Name,
			"consecutive_failures", cb.failures)
	}
}

// onSuccess updates success accounting. Caller holds cb.mu.
func (cb *CircuitBreaker) onSuccess(probing bool) {
	if !probing {
		cb.failures = 0
		return
	}
	if cb.probes-cb.probeFails >= cb.cfg.HalfOpenMax {
		cb.failures = 0
		cb.probes = 0
		cb.probeFails = 0
		cb.transition(StateClosed)
		slog.Info("circuit breaker closed after successful probes",
			"backend", cb.cfg.Name)
	}
}

// transition changes state and fires OnTransition. Caller holds cb.mu.
func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	if cb.cfg.OnTransition != nil {
		cb.cfg.OnTransition(cb.cfg.Name, from, to)
	}
}

// State reports the breaker's current mode. An open breaker whose cool-down
// has elapsed reports [StateHalfOpen]; the stored state changes on the next
// [CircuitBreaker.Execute].
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateOpen && time.Since(cb.lastFailAt) >= cb.cfg.ResetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Reset forces the breaker closed and clears all counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.probes = 0
	cb.probeFails = 0
	cb.transition(StateClosed)
	slog.Info("circuit breaker manually reset", "backend", cb.cfg.Name)
}
