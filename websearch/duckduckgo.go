// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package websearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const defaultDuckDuckGoEndpoint = "https://api.duckduckgo.com"

// DuckDuckGoProvider implements the Provider interface for the DuckDuckGo
// Instant Answer API. It needs no credential, which makes it the free
// secondary provider behind the keyed primary.
type DuckDuckGoProvider struct {
	apiURL     string
	httpClient *http.Client
	logger     Logger
}

// NewDuckDuckGoProvider creates a new DuckDuckGoProvider instance.
func NewDuckDuckGoProvider(apiURL string, httpClient *http.Client, logger Logger) *DuckDuckGoProvider {
	if apiURL == "" {
		apiURL = defaultDuckDuckGoEndpoint
	}
	return &DuckDuckGoProvider{
		apiURL:     apiURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Name implements the Provider interface.
func (d *DuckDuckGoProvider) Name() string {
	return "duckduckgo"
}

// Search queries the Instant Answer API. The endpoint mixes flat entries and
// nested topic groups in RelatedTopics, so the body is probed with gjson
// instead of a rigid struct.
func (d *DuckDuckGoProvider) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 10 {
		limit = 10
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(d.apiURL, "/")+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create web search request: %w", err)
	}

	values := url.Values{}
	values.Set("q", query)
	values.Set("format", "json")
	values.Set("no_html", "1")
	values.Set("no_redirect", "1")
	values.Set("skip_disambig", "1")
	req.URL.RawQuery = values.Encode()
	req.Header.Set("Accept", "application/json")

	client := d.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if d.logger != nil {
			d.logger.Error("duckduckgo search request failed", "error", err)
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("duckduckgo search request failed: %v: %w", err, ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo search request failed: status %s: %w", resp.Status, ErrUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read duckduckgo response: %v: %w", err, ErrUnavailable)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("malformed duckduckgo response body: %w", ErrUnavailable)
	}

	return &SearchResponse{Results: d.extractResults(gjson.ParseBytes(body), limit)}, nil
}

// extractResults flattens the instant-answer payload into search results:
// the abstract first, then Results, then RelatedTopics with nested topic
// groups unwrapped.
func (d *DuckDuckGoProvider) extractResults(payload gjson.Result, limit int) []SearchResult {
	results := make([]SearchResult, 0, limit)
	seen := make(map[string]struct{})

	add := func(title, link, snippet string) {
		link = strings.TrimSpace(link)
		if link == "" || len(results) >= limit {
			return
		}
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		results = append(results, SearchResult{
			Title:   strings.TrimSpace(title),
			URL:     link,
			Snippet: strings.TrimSpace(snippet),
		})
	}

	add(payload.Get("Heading").String(), payload.Get("AbstractURL").String(), payload.Get("AbstractText").String())

	payload.Get("Results").ForEach(func(_, item gjson.Result) bool {
		add(item.Get("Text").String(), item.Get("FirstURL").String(), "")
		return len(results) < limit
	})

	payload.Get("RelatedTopics").ForEach(func(_, item gjson.Result) bool {
		if topics := item.Get("Topics"); topics.Exists() {
			topics.ForEach(func(_, nested gjson.Result) bool {
				add(nested.Get("Text").String(), nested.Get("FirstURL").String(), "")
				return len(results) < limit
			})
		} else {
			add(item.Get("Text").String(), item.Get("FirstURL").String(), "")
		}
		return len(results) < limit
	})

	return results
}
