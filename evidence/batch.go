// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package evidence

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FindEvidenceBatch fans out one lookup per query with bounded concurrency.
// Results keep the input order. Lookups share one session, so a provider
// that reports a configuration error is skipped for the rest of the batch,
// and canceling ctx propagates to every in-flight provider call.
func (c *Coordinator) FindEvidenceBatch(ctx context.Context, queries []SearchQuery, maxConcurrent int) []SearchResult {
	if len(queries) == 0 {
		return []SearchResult{}
	}
	if maxConcurrent <= 0 {
		maxConcurrent = c.cfg.MaxConcurrentLookups
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	results := make([]SearchResult, len(queries))
	s := newSession()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, query := range queries {
		i, query := i, query
		g.Go(func() error {
			// findEvidence never fails; a canceled context degrades the
			// lookup to fallback candidates instead of aborting the batch.
			results[i] = c.findEvidence(gctx, query, s)
			return nil
		})
	}

	_ = g.Wait()
	return results
}
