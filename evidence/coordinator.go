// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package evidence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ChrisAnz19/evidence-search/config"
	"github.com/ChrisAnz19/evidence-search/searchutil"
	"github.com/ChrisAnz19/evidence-search/websearch"
)

// Recorder receives coordinator instrumentation. A nil Recorder disables it.
type Recorder interface {
	ObserveProviderSearch(provider, outcome string, elapsed float64)
	IncrementLookups(result string)
	IncrementFallback()
}

// Provider call outcomes reported to the Recorder.
const (
	OutcomeSuccess       = "success"
	OutcomeEmpty         = "empty"
	OutcomeUnavailable   = "unavailable"
	OutcomeNotConfigured = "not_configured"
)

// CoordinatorOpts wires a Coordinator. Primary and Secondary may be nil;
// Limiter, Cache, Metrics and Logger are optional.
type CoordinatorOpts struct {
	Config    config.SearchConfig
	Primary   websearch.Provider
	Secondary websearch.Provider
	Generator *FallbackGenerator
	Limiter   *searchutil.RateLimiter
	Cache     *searchutil.TTLCache
	Metrics   Recorder
	Logger    websearch.Logger
}

// Coordinator orchestrates the evidence search strategy: primary provider
// under a short timeout, then the free secondary provider, then the local
// fallback generator. It is the only entry point callers use and it never
// returns an error: every failure mode folds into the SearchResult.
type Coordinator struct {
	cfg       config.SearchConfig
	primary   websearch.Provider
	secondary websearch.Provider
	generator *FallbackGenerator
	limiter   *searchutil.RateLimiter
	cache     *searchutil.TTLCache
	metrics   Recorder
	logger    websearch.Logger
}

// NewCoordinator creates a Coordinator from opts.
func NewCoordinator(opts CoordinatorOpts) *Coordinator {
	generator := opts.Generator
	if generator == nil {
		generator = NewFallbackGenerator()
	}
	return &Coordinator{
		cfg:       opts.Config,
		primary:   opts.Primary,
		secondary: opts.Secondary,
		generator: generator,
		limiter:   opts.Limiter,
		cache:     opts.Cache,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
}

// session tracks providers that returned a configuration error so they are
// skipped for the remainder of one request (single lookup or whole batch).
type session struct {
	mu      sync.Mutex
	skipped map[string]struct{}
}

func newSession() *session {
	return &session{skipped: make(map[string]struct{})}
}

func (s *session) skip(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped[name] = struct{}{}
}

func (s *session) isSkipped(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.skipped[name]
	return ok
}

// FindEvidence runs the full search strategy for one query. It always
// returns within the configured total budget regardless of provider
// behavior, including providers that never respond.
func (c *Coordinator) FindEvidence(ctx context.Context, q SearchQuery) SearchResult {
	return c.findEvidence(ctx, q, newSession())
}

func (c *Coordinator) findEvidence(ctx context.Context, q SearchQuery, s *session) SearchResult {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.TotalBudget())
	defer cancel()

	if c.cfg.ExternalSearchEnabled && strings.TrimSpace(q.Text) != "" {
		if cached, ok := c.cachedResult(q); ok {
			return cached
		}

		var sawEmptySuccess bool
		for _, provider := range []websearch.Provider{c.primary, c.secondary} {
			if provider == nil || s.isSkipped(provider.Name()) {
				continue
			}
			if ctx.Err() != nil {
				break
			}

			result, outcome := c.tryProvider(ctx, provider, q)
			switch outcome {
			case OutcomeSuccess:
				c.cacheResult(q, result)
				c.countLookup("provider")
				return result
			case OutcomeEmpty:
				sawEmptySuccess = true
			case OutcomeNotConfigured:
				s.skip(provider.Name())
			}
			// OutcomeUnavailable: fall through to the next strategy, no
			// retry within this lookup.
		}

		if sawEmptySuccess && !c.cfg.FallbackEnabled {
			c.countLookup("empty")
			return fallbackResult(q, nil, ErrNoResults.Error())
		}
	}

	return c.fallback(q)
}

// tryProvider runs one bounded provider call and classifies the outcome.
func (c *Coordinator) tryProvider(ctx context.Context, provider websearch.Provider, q SearchQuery) (SearchResult, string) {
	pctx, pcancel := context.WithTimeout(ctx, c.cfg.ProviderTimeout())
	defer pcancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(pctx); err != nil {
			c.observe(provider.Name(), OutcomeUnavailable, 0)
			return SearchResult{}, OutcomeUnavailable
		}
	}

	start := time.Now()
	resp, err := provider.Search(pctx, q.Text, c.cfg.MaxResultsPerQuery)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		outcome := OutcomeUnavailable
		if errors.Is(err, ErrConfiguration) {
			outcome = OutcomeNotConfigured
		}
		c.observe(provider.Name(), outcome, elapsed)
		if c.logger != nil {
			c.logger.Warn("provider search failed",
				"provider", provider.Name(),
				"outcome", outcome,
				"error", err.Error(),
			)
		}
		return SearchResult{}, outcome
	}

	candidates := make([]URLCandidate, 0, len(resp.Results))
	for _, item := range resp.Results {
		if item.URL == "" {
			continue
		}
		candidates = append(candidates, URLCandidate{
			URL:    item.URL,
			Source: SourceProvider,
			Note:   item.Title,
		})
	}

	if len(candidates) == 0 {
		c.observe(provider.Name(), OutcomeEmpty, elapsed)
		return SearchResult{}, OutcomeEmpty
	}

	c.observe(provider.Name(), OutcomeSuccess, elapsed)
	return providerResult(q, candidates), OutcomeSuccess
}

// fallback wraps the generator output in a failed result. This step never
// fails; a hint-less query simply yields an empty candidate list with a
// descriptive message.
func (c *Coordinator) fallback(q SearchQuery) SearchResult {
	if c.cfg.FallbackEnabled {
		if candidates := c.generator.Generate(q); len(candidates) > 0 {
			if c.metrics != nil {
				c.metrics.IncrementFallback()
			}
			c.countLookup("fallback")
			return fallbackResult(q, candidates, "external search unavailable, returning fallback candidates")
		}
	}
	c.countLookup("empty")
	return fallbackResult(q, nil, fmt.Sprintf("%s: all search strategies exhausted", ErrNoResults.Error()))
}

func (c *Coordinator) cachedResult(q SearchQuery) (SearchResult, bool) {
	if c.cache == nil {
		return SearchResult{}, false
	}
	if cached, ok := c.cache.Get(q.Fingerprint()).(SearchResult); ok {
		c.countLookup("cached")
		return cached, true
	}
	return SearchResult{}, false
}

func (c *Coordinator) cacheResult(q SearchQuery, result SearchResult) {
	if c.cache != nil {
		c.cache.Set(q.Fingerprint(), result)
	}
}

func (c *Coordinator) observe(provider, outcome string, elapsed float64) {
	if c.metrics != nil {
		c.metrics.ObserveProviderSearch(provider, outcome, elapsed)
	}
}

func (c *Coordinator) countLookup(result string) {
	if c.metrics != nil {
		c.metrics.IncrementLookups(result)
	}
}
