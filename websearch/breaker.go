// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package websearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Default circuit breaker settings.
const (
	defaultBreakerMaxFailures uint32 = 5
	defaultBreakerCooldown           = 30 * time.Second
)

// BreakerConfig configures the circuit breaker around a provider.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32
	// Cooldown is how long the circuit stays open before allowing a probe.
	Cooldown time.Duration
}

// BreakerProvider wraps a Provider with circuit breaker protection. When the
// wrapped provider fails repeatedly the circuit opens and subsequent calls
// fail fast as ErrUnavailable without reaching the provider.
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[*SearchResponse]
	logger  Logger
}

// NewBreakerProvider wraps inner with a circuit breaker. Zero-valued config
// fields use defaults.
func NewBreakerProvider(inner Provider, cfg BreakerConfig, logger Logger) *BreakerProvider {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	cooldown := cfg.Cooldown
	if cooldown == 0 {
		cooldown = defaultBreakerCooldown
	}

	cb := gobreaker.NewCircuitBreaker[*SearchResponse](gobreaker.Settings{
		Name:        "websearch:" + inner.Name(),
		MaxRequests: 1, // allow one probe in half-open state
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("circuit breaker state change",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			}
		},
		IsSuccessful: func(err error) bool {
			// Configuration errors are permanent; tripping the breaker on
			// them would only mask the real cause.
			return err == nil || errors.Is(err, ErrNotConfigured)
		},
	})

	return &BreakerProvider{
		inner:   inner,
		breaker: cb,
		logger:  logger,
	}
}

// Name implements the Provider interface.
func (p *BreakerProvider) Name() string {
	return p.inner.Name()
}

// Search implements the Provider interface. Calls are routed through the
// circuit breaker; an open circuit fails fast as ErrUnavailable.
func (p *BreakerProvider) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	resp, err := p.breaker.Execute(func() (*SearchResponse, error) {
		return p.inner.Search(ctx, query, limit)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s circuit open: %w", p.inner.Name(), ErrUnavailable)
		}
		return nil, err
	}
	return resp, nil
}
