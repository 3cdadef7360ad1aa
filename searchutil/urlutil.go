// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package searchutil

import "strings"

// NormalizeURL produces the deduplication key for an evidence URL: trimmed,
// lowercased, trailing slashes stripped. Two URLs differing only by letter
// case or a trailing slash normalize to the same key.
func NormalizeURL(rawURL string) string {
	normalized := strings.ToLower(strings.TrimSpace(rawURL))
	for strings.HasSuffix(normalized, "/") {
		normalized = strings.TrimSuffix(normalized, "/")
	}
	return normalized
}

// BuildAPIURL constructs an API URL from a base URL and path segments,
// trimming stray slashes so joins never produce doubled separators.
//
// Example:
//
//	BuildAPIURL("https://serpapi.com/", "search.json")
//	// Returns: "https://serpapi.com/search.json"
func BuildAPIURL(baseURL string, pathSegments ...string) string {
	if baseURL == "" {
		return ""
	}

	base := strings.TrimRight(baseURL, "/")

	if len(pathSegments) == 0 {
		return base
	}

	for i, segment := range pathSegments {
		pathSegments[i] = strings.Trim(segment, "/")
	}

	return base + "/" + strings.Join(pathSegments, "/")
}
