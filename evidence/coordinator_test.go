// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package evidence

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ChrisAnz19/evidence-search/config"
	"github.com/ChrisAnz19/evidence-search/websearch"
)

// fakeProvider scripts a provider's behavior and counts calls.
type fakeProvider struct {
	name  string
	calls atomic.Int32
	fn    func(ctx context.Context, query string, limit int) (*websearch.SearchResponse, error)
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Search(ctx context.Context, query string, limit int) (*websearch.SearchResponse, error) {
	p.calls.Add(1)
	return p.fn(ctx, query, limit)
}

func successProvider(name string, urls ...string) *fakeProvider {
	results := make([]websearch.SearchResult, 0, len(urls))
	for _, u := range urls {
		results = append(results, websearch.SearchResult{URL: u})
	}
	return &fakeProvider{name: name, fn: func(ctx context.Context, query string, limit int) (*websearch.SearchResponse, error) {
		return &websearch.SearchResponse{Results: results}, nil
	}}
}

func failingProvider(name string, err error) *fakeProvider {
	return &fakeProvider{name: name, fn: func(ctx context.Context, query string, limit int) (*websearch.SearchResponse, error) {
		return nil, err
	}}
}

// hangingProvider blocks until its context expires, like a provider that
// never responds.
func hangingProvider(name string) *fakeProvider {
	return &fakeProvider{name: name, fn: func(ctx context.Context, query string, limit int) (*websearch.SearchResponse, error) {
		<-ctx.Done()
		return nil, websearch.ErrUnavailable
	}}
}

func testSearchConfig() config.SearchConfig {
	cfg := config.DefaultSearchConfig()
	cfg.ExternalSearchEnabled = true
	cfg.ProviderTimeoutSeconds = 1
	cfg.TotalBudgetSeconds = 2
	return cfg
}

func newTestCoordinator(cfg config.SearchConfig, primary, secondary websearch.Provider) *Coordinator {
	return NewCoordinator(CoordinatorOpts{
		Config:    cfg,
		Primary:   primary,
		Secondary: secondary,
	})
}

func TestCoordinatorFindEvidence(t *testing.T) {
	query := SearchQuery{Text: "dialer company in Austin", Company: "Orum"}

	t.Run("primary success returns provider candidates only", func(t *testing.T) {
		primary := successProvider("primary", "https://orum.com", "https://example.com/dialers")
		secondary := successProvider("secondary", "https://unused.example.com")
		coordinator := newTestCoordinator(testSearchConfig(), primary, secondary)

		result := coordinator.FindEvidence(context.Background(), query)

		require.True(t, result.Success)
		require.Len(t, result.Candidates, 2)
		for _, candidate := range result.Candidates {
			require.Equal(t, SourceProvider, candidate.Source)
		}
		require.Equal(t, int32(0), secondary.calls.Load(), "secondary must not run when primary succeeds")
	})

	t.Run("primary failure falls through to secondary", func(t *testing.T) {
		primary := failingProvider("primary", websearch.ErrUnavailable)
		secondary := successProvider("secondary", "https://orum.com")
		coordinator := newTestCoordinator(testSearchConfig(), primary, secondary)

		result := coordinator.FindEvidence(context.Background(), query)

		require.True(t, result.Success)
		require.Len(t, result.Candidates, 1)
		require.Equal(t, int32(1), primary.calls.Load())
	})

	t.Run("primary times out, secondary empty, fallback wins", func(t *testing.T) {
		primary := hangingProvider("primary")
		secondary := successProvider("secondary") // answers with zero results
		coordinator := newTestCoordinator(testSearchConfig(), primary, secondary)

		result := coordinator.FindEvidence(context.Background(), query)

		require.False(t, result.Success)
		require.NotEmpty(t, result.Candidates)
		require.Equal(t, "https://orum.com", result.Candidates[0].URL)
		for _, candidate := range result.Candidates {
			require.Equal(t, SourceFallback, candidate.Source)
		}
	})

	t.Run("fallback candidates are deterministic", func(t *testing.T) {
		coordinator := newTestCoordinator(testSearchConfig(),
			failingProvider("primary", websearch.ErrUnavailable),
			failingProvider("secondary", websearch.ErrUnavailable))

		first := coordinator.FindEvidence(context.Background(), query)
		second := coordinator.FindEvidence(context.Background(), query)

		require.Equal(t, first.Candidates, second.Candidates)
	})

	t.Run("external search disabled goes straight to fallback", func(t *testing.T) {
		cfg := testSearchConfig()
		cfg.ExternalSearchEnabled = false
		primary := successProvider("primary", "https://should-not-run.example.com")
		coordinator := newTestCoordinator(cfg, primary, nil)

		result := coordinator.FindEvidence(context.Background(), query)

		require.False(t, result.Success)
		require.NotEmpty(t, result.Candidates)
		require.Equal(t, int32(0), primary.calls.Load())
	})

	t.Run("returns within budget against a provider that never responds", func(t *testing.T) {
		coordinator := newTestCoordinator(testSearchConfig(),
			hangingProvider("primary"), hangingProvider("secondary"))

		start := time.Now()
		result := coordinator.FindEvidence(context.Background(), query)
		elapsed := time.Since(start)

		require.False(t, result.Success)
		require.Less(t, elapsed, 3*time.Second)
	})

	t.Run("all strategies empty yields a descriptive failure", func(t *testing.T) {
		// No hints, so the fallback generator has nothing to work with.
		hintless := SearchQuery{Text: "completely unknowable thing"}
		coordinator := newTestCoordinator(testSearchConfig(),
			successProvider("primary"), successProvider("secondary"))

		result := coordinator.FindEvidence(context.Background(), hintless)

		require.False(t, result.Success)
		require.Empty(t, result.Candidates)
		require.NotEmpty(t, result.ErrorMessage)
	})

	t.Run("hint-only query skips providers but still produces fallback", func(t *testing.T) {
		primary := successProvider("primary", "https://should-not-run.example.com")
		coordinator := newTestCoordinator(testSearchConfig(), primary, nil)

		result := coordinator.FindEvidence(context.Background(), SearchQuery{Company: "Orum"})

		require.False(t, result.Success)
		require.Equal(t, "https://orum.com", result.Candidates[0].URL)
		require.Equal(t, int32(0), primary.calls.Load())
	})

	t.Run("disabled fallback reports no results", func(t *testing.T) {
		cfg := testSearchConfig()
		cfg.FallbackEnabled = false
		coordinator := newTestCoordinator(cfg,
			failingProvider("primary", websearch.ErrUnavailable),
			failingProvider("secondary", websearch.ErrUnavailable))

		result := coordinator.FindEvidence(context.Background(), query)

		require.False(t, result.Success)
		require.Empty(t, result.Candidates)
		require.NotEmpty(t, result.ErrorMessage)
	})
}
