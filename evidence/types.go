// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package evidence

import (
	"strings"
)

// Source identifies where a URL candidate came from.
type Source string

const (
	// SourceProvider marks candidates returned by a live search provider.
	SourceProvider Source = "provider"
	// SourceFallback marks locally generated candidates used when no live
	// search succeeded.
	SourceFallback Source = "fallback"
)

// SearchQuery is the input for one evidence lookup. It is immutable once
// created; hints beyond the free-text query are optional.
type SearchQuery struct {
	Text     string `json:"text"`
	Company  string `json:"company,omitempty"`
	Role     string `json:"role,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// IsEmpty reports whether the query carries neither text nor hints.
func (q SearchQuery) IsEmpty() bool {
	return strings.TrimSpace(q.Text) == "" &&
		strings.TrimSpace(q.Company) == "" &&
		strings.TrimSpace(q.Role) == "" &&
		strings.TrimSpace(q.Industry) == ""
}

// Fingerprint returns a stable cache key for the query. Hints are folded in
// so two queries with the same text but different companies never collide.
func (q SearchQuery) Fingerprint() string {
	parts := []string{q.Text, q.Company, q.Role, q.Industry}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "\x1f")
}

// URLCandidate is a single evidence URL. Within one query's result set a
// candidate has no identity beyond its URL string.
type URLCandidate struct {
	URL    string `json:"url"`
	Source Source `json:"source"`
	Note   string `json:"note,omitempty"`
}

// SearchResult is the outcome of one evidence lookup.
//
// Invariant: Success == true implies at least one provider-sourced candidate;
// Success == false implies Candidates is empty or entirely fallback-sourced.
type SearchResult struct {
	Query        SearchQuery    `json:"query"`
	Candidates   []URLCandidate `json:"candidates"`
	Success      bool           `json:"success"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// providerResult builds a successful result from provider-sourced candidates.
func providerResult(q SearchQuery, candidates []URLCandidate) SearchResult {
	return SearchResult{
		Query:      q,
		Candidates: candidates,
		Success:    true,
	}
}

// fallbackResult builds a failed-but-populated result from fallback candidates.
func fallbackResult(q SearchQuery, candidates []URLCandidate, message string) SearchResult {
	return SearchResult{
		Query:        q,
		Candidates:   candidates,
		Success:      false,
		ErrorMessage: message,
	}
}
