// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package websearch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// countingProvider fails every call with a fixed error and counts calls.
type countingProvider struct {
	calls int
	err   error
	resp  *SearchResponse
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.resp, nil
}

func TestBreakerProvider(t *testing.T) {
	t.Run("passes successful responses through", func(t *testing.T) {
		inner := &countingProvider{resp: &SearchResponse{Results: []SearchResult{{URL: "https://orum.com"}}}}
		provider := NewBreakerProvider(inner, BreakerConfig{}, &mockLogger{})

		resp, err := provider.Search(context.Background(), "Orum", 5)

		require.NoError(t, err)
		require.Len(t, resp.Results, 1)
		require.Equal(t, "counting", provider.Name())
	})

	t.Run("opens after consecutive failures and fails fast", func(t *testing.T) {
		inner := &countingProvider{err: ErrUnavailable}
		provider := NewBreakerProvider(inner, BreakerConfig{MaxFailures: 2, Cooldown: time.Minute}, &mockLogger{})

		for i := 0; i < 2; i++ {
			_, err := provider.Search(context.Background(), "anything", 5)
			require.ErrorIs(t, err, ErrUnavailable)
		}
		require.Equal(t, 2, inner.calls)

		// Circuit is open now: the inner provider must not be reached.
		_, err := provider.Search(context.Background(), "anything", 5)
		require.ErrorIs(t, err, ErrUnavailable)
		require.Equal(t, 2, inner.calls)
	})

	t.Run("configuration errors never trip the breaker", func(t *testing.T) {
		inner := &countingProvider{err: ErrNotConfigured}
		provider := NewBreakerProvider(inner, BreakerConfig{MaxFailures: 2, Cooldown: time.Minute}, &mockLogger{})

		for i := 0; i < 5; i++ {
			_, err := provider.Search(context.Background(), "anything", 5)
			require.ErrorIs(t, err, ErrNotConfigured)
		}
		require.Equal(t, 5, inner.calls)
	})
}
