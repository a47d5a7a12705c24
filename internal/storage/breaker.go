package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// BreakerSettings configures the circuit breaker around a store.
type BreakerSettings struct {
	// Failures is the number of consecutive failed appends that opens the breaker.
	Failures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

// Breaker stops calling a failing store for a while so submissions are not
// held up by a dead database. Rejected appends return ErrStoreUnavailable.
type Breaker struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

func NewBreaker(next Store, settings BreakerSettings, logger *logrus.Logger) *Breaker {
	if settings.Failures == 0 {
		settings.Failures = 5
	}
	if logger == nil {
		logger = logrus.New()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "storage",
		MaxRequests: 1,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.Failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Storage circuit breaker changed state")
		},
		// A caller giving up is not a store failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) Append(ctx context.Context, rec Record) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Append(ctx, rec)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

// Ping reports ErrStoreUnavailable while open, otherwise probes the wrapped
// store when it supports probing.
func (b *Breaker) Ping(ctx context.Context) error {
	if b.cb.State() == gobreaker.StateOpen {
		return ErrStoreUnavailable
	}
	if p, ok := b.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Pings reports whether the wrapped store has a remote dependency to probe.
func (b *Breaker) Pings() bool {
	_, ok := b.next.(Pinger)
	return ok
}

// State returns the breaker state name.
func (b *Breaker) State() string {
	return b.cb.State().String()
}

func (b *Breaker) Close() error {
	return b.next.Close()
}
