// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package searchutil

import (
	"context"
	"time"
)

// RateLimiter is a token bucket shared by all concurrent evidence lookups so
// a batch fan-out cannot overwhelm the external search providers.
type RateLimiter struct {
	tokens     chan struct{}
	refillRate time.Duration
	done       chan struct{}
}

// NewRateLimiter creates a rate limiter with the specified requests per
// minute and burst size. Non-positive values fall back to defaults.
func NewRateLimiter(requestsPerMinute, burstSize int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if burstSize <= 0 {
		burstSize = 10
	}

	limiter := &RateLimiter{
		tokens:     make(chan struct{}, burstSize),
		refillRate: time.Minute / time.Duration(requestsPerMinute),
		done:       make(chan struct{}),
	}

	for i := 0; i < burstSize; i++ {
		limiter.tokens <- struct{}{}
	}

	go limiter.refillTokens()

	return limiter
}

// Wait blocks until a token is available or the context is canceled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	select {
	case <-r.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return context.Canceled
	}
}

// TryAcquire attempts to acquire a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	select {
	case <-r.tokens:
		return true
	default:
		return false
	}
}

// Close stops the rate limiter and releases resources.
func (r *RateLimiter) Close() {
	close(r.done)
}

func (r *RateLimiter) refillTokens() {
	ticker := time.NewTicker(r.refillRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			select {
			case r.tokens <- struct{}{}:
			default:
			}
		case <-r.done:
			return
		}
	}
}
