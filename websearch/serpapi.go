// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ChrisAnz19/evidence-search/searchutil"
)

const defaultSerpAPIEndpoint = "https://serpapi.com"

// SerpAPIProvider implements the Provider interface for the SerpAPI
// Google-results proxy. It is the keyed, primary provider.
type SerpAPIProvider struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	logger     Logger
}

// NewSerpAPIProvider creates a new SerpAPIProvider instance.
func NewSerpAPIProvider(apiKey, apiURL string, httpClient *http.Client, logger Logger) *SerpAPIProvider {
	if apiURL == "" {
		apiURL = defaultSerpAPIEndpoint
	}
	return &SerpAPIProvider{
		apiKey:     apiKey,
		apiURL:     apiURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Name implements the Provider interface.
func (s *SerpAPIProvider) Name() string {
	return "serpapi"
}

// Search performs a SerpAPI web search and returns the organic results.
// A missing API key fails with ErrNotConfigured before any network call so
// the coordinator can skip this provider instead of retrying it.
func (s *SerpAPIProvider) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	if strings.TrimSpace(s.apiKey) == "" {
		return nil, fmt.Errorf("serpapi: missing API key: %w", ErrNotConfigured)
	}

	if limit <= 0 {
		limit = 5
	}
	if limit > 10 {
		limit = 10
	}

	endpoint := searchutil.BuildAPIURL(s.apiURL, "search.json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create web search request: %w", err)
	}

	values := url.Values{}
	values.Set("engine", "google")
	values.Set("q", query)
	values.Set("num", strconv.Itoa(limit))
	values.Set("api_key", s.apiKey)
	req.URL.RawQuery = values.Encode()
	req.Header.Set("Accept", "application/json")

	client := s.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("serpapi search request failed", "error", err)
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("serpapi search request failed: %v: %w", err, ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("serpapi rejected credentials: status %s: %w", resp.Status, ErrNotConfigured)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi search request failed: status %s: %w", resp.Status, ErrUnavailable)
	}

	var payload serpAPISearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode serpapi response: %v: %w", err, ErrUnavailable)
	}

	results := make([]SearchResult, 0, len(payload.OrganicResults))
	for i, item := range payload.OrganicResults {
		if i >= limit {
			break
		}
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		results = append(results, SearchResult{
			Title:   strings.TrimSpace(item.Title),
			URL:     link,
			Snippet: strings.TrimSpace(item.Snippet),
		})
	}

	// Zero results with a 200 is a successful, empty answer.
	return &SearchResponse{Results: results}, nil
}

type serpAPISearchResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}
