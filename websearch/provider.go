// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package websearch

import (
	"context"
	"errors"
)

// Provider error kinds. Adapters wrap these with %w so the coordinator can
// classify failures with errors.Is.
var (
	// ErrNotConfigured means the provider is missing a credential or has
	// malformed settings. No network call was attempted.
	ErrNotConfigured = errors.New("search provider not configured")

	// ErrUnavailable covers transport failures, timeouts and non-2xx
	// responses.
	ErrUnavailable = errors.New("search provider unavailable")
)

// SearchResponse represents the response from a search provider.
type SearchResponse struct {
	Results []SearchResult // List of search results
}

// SearchResult represents a single search result.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// Provider defines the interface for web search providers.
//
// A nil error with zero results means the provider answered and genuinely
// found nothing; that is distinct from ErrUnavailable and must not be
// treated as a failure by callers.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) (*SearchResponse, error)
}

// Logger abstracts the logging interface used by providers.
type Logger interface {
	Debug(message string, keyValuePairs ...any)
	Info(message string, keyValuePairs ...any)
	Warn(message string, keyValuePairs ...any)
	Error(message string, keyValuePairs ...any)
}
