// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package evidence

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ChrisAnz19/evidence-search/searchutil"
	"github.com/ChrisAnz19/evidence-search/websearch"
)

func TestCoordinatorFindEvidenceBatch(t *testing.T) {
	t.Run("results keep input order", func(t *testing.T) {
		primary := &fakeProvider{name: "primary", fn: func(ctx context.Context, query string, limit int) (*websearch.SearchResponse, error) {
			return &websearch.SearchResponse{Results: []websearch.SearchResult{{URL: "https://results.example.com/" + query}}}, nil
		}}
		coordinator := newTestCoordinator(testSearchConfig(), primary, nil)

		queries := []SearchQuery{
			{Text: "one"}, {Text: "two"}, {Text: "three"},
		}
		results := coordinator.FindEvidenceBatch(context.Background(), queries, 2)

		require.Len(t, results, 3)
		for i, result := range results {
			require.Equal(t, queries[i], result.Query)
			require.Equal(t, "https://results.example.com/"+queries[i].Text, result.Candidates[0].URL)
		}
	})

	t.Run("concurrency stays within the limit", func(t *testing.T) {
		var inFlight, peak atomic.Int32
		primary := &fakeProvider{name: "primary", fn: func(ctx context.Context, query string, limit int) (*websearch.SearchResponse, error) {
			current := inFlight.Add(1)
			for {
				observed := peak.Load()
				if current <= observed || peak.CompareAndSwap(observed, current) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
			return &websearch.SearchResponse{Results: []websearch.SearchResult{{URL: "https://a.example.com"}}}, nil
		}}
		coordinator := newTestCoordinator(testSearchConfig(), primary, nil)

		queries := make([]SearchQuery, 8)
		for i := range queries {
			queries[i] = SearchQuery{Text: fmt.Sprintf("query %d", i)}
		}
		coordinator.FindEvidenceBatch(context.Background(), queries, 2)

		require.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("configuration error skips the provider for the whole batch", func(t *testing.T) {
		primary := failingProvider("primary", websearch.ErrNotConfigured)
		secondary := successProvider("secondary", "https://orum.com")
		coordinator := newTestCoordinator(testSearchConfig(), primary, secondary)

		queries := []SearchQuery{
			{Text: "one", Company: "Orum"},
			{Text: "two", Company: "Orum"},
			{Text: "three", Company: "Orum"},
		}
		// Serial fan-out so the skip from the first lookup is visible to the rest.
		results := coordinator.FindEvidenceBatch(context.Background(), queries, 1)

		require.Len(t, results, 3)
		require.Equal(t, int32(1), primary.calls.Load(), "misconfigured provider must be tried once per batch")
		for _, result := range results {
			require.True(t, result.Success)
		}
	})

	t.Run("cancellation degrades lookups to fallback", func(t *testing.T) {
		primary := hangingProvider("primary")
		coordinator := newTestCoordinator(testSearchConfig(), primary, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results := coordinator.FindEvidenceBatch(ctx, []SearchQuery{{Text: "one", Company: "Orum"}}, 2)

		require.Len(t, results, 1)
		require.False(t, results[0].Success)
		require.NotEmpty(t, results[0].Candidates, "fallback is local and survives cancellation")
	})

	t.Run("empty batch yields an empty result set", func(t *testing.T) {
		coordinator := newTestCoordinator(testSearchConfig(), nil, nil)
		require.Empty(t, coordinator.FindEvidenceBatch(context.Background(), nil, 2))
	})
}

func TestCoordinatorCaching(t *testing.T) {
	cache := searchutil.NewTTLCache(time.Minute)
	defer cache.Close()

	primary := successProvider("primary", "https://orum.com")
	coordinator := NewCoordinator(CoordinatorOpts{
		Config:  testSearchConfig(),
		Primary: primary,
		Cache:   cache,
	})

	query := SearchQuery{Text: "dialer company in Austin", Company: "Orum"}

	first := coordinator.FindEvidence(context.Background(), query)
	second := coordinator.FindEvidence(context.Background(), query)

	require.Equal(t, first, second)
	require.Equal(t, int32(1), primary.calls.Load(), "second lookup must be served from cache")
}
