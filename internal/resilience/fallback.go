package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when every backend in a [FallbackGroup] either
// failed or had an open breaker. The last underlying error is attached.
var ErrAllFailed = errors.New("all backends failed")

// FallbackConfig holds the circuit breaker settings applied to every backend
// registered in a [FallbackGroup]. The Name field is overwritten per entry.
type FallbackConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

// backend pairs a registered value with the breaker guarding it.
type backend[T any] struct {
	name    string
	value   T
	breaker *CircuitBreaker
}

// FallbackGroup holds a primary backend and zero or more fallbacks of the
// same type, each behind its own circuit breaker. Registration order is the
// failover order. Register all backends before first use; the entry list is
// not guarded by a lock.
type FallbackGroup[T any] struct {
	backends []backend[T]
	cfg      FallbackConfig
}

// NewFallbackGroup builds a group with primary as the first backend.
func NewFallbackGroup[T any](primary T, primaryName string, cfg FallbackConfig) *FallbackGroup[T] {
	g := &FallbackGroup[T]{cfg: cfg}
	g.add(primaryName, primary)
	return g
}

// AddFallback registers another backend, tried after all earlier entries.
func (g *FallbackGroup[T]) AddFallback(name string, fb T) {
	g.add(name, fb)
}

func (g *FallbackGroup[T]) add(name string, value T) {
	bc := g.cfg.CircuitBreaker
	bc.Name = name
	g.backends = append(g.backends, backend[T]{
		name:    name,
		value:   value,
		breaker: NewCircuitBreaker(bc),
	})
}

// ExecuteWithResult runs fn against each backend in failover order until one
// succeeds. Backends with open breakers are skipped. When every backend
// fails, the zero value and [ErrAllFailed] (wrapping the last error) are
// returned.
//
// This is a package-level function because methods cannot introduce the
// result type parameter R.
func ExecuteWithResult[T, R any](g *FallbackGroup[T], fn func(T) (R, error)) (R, error) {
	var lastErr error
	for i := range g.backends {
		b := &g.backends[i]
		var result R
		err := b.breaker.Execute(func() error {
			var callErr error
			result, callErr = fn(b.value)
			return callErr
		})
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, ErrCircuitOpen) {
			slog.Debug("skipping backend with open breaker", "backend", b.name)
			continue
		}
		slog.Warn("backend failed, trying next", "backend", b.name, "error", err)
	}
	var zero R
	return zero, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}
