// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package evidence

import (
	"strings"
	"unicode"
)

// Maximum number of candidates the generator produces for one query.
const maxFallbackCandidates = 5

// FallbackGenerator produces plausible evidence URLs without any network
// call. Generation is a pure function of the query: the same query always
// yields the same candidates, in the same order.
type FallbackGenerator struct{}

// NewFallbackGenerator creates a FallbackGenerator.
func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

// Generate derives 0-5 candidates from the query's hints. A query with no
// usable hints yields an empty list; Generate never fails.
func (g *FallbackGenerator) Generate(q SearchQuery) []URLCandidate {
	candidates := make([]URLCandidate, 0, maxFallbackCandidates)
	seen := make(map[string]struct{})

	add := func(url, note string) {
		if len(candidates) >= maxFallbackCandidates {
			return
		}
		if _, ok := seen[url]; ok {
			return
		}
		seen[url] = struct{}{}
		candidates = append(candidates, URLCandidate{
			URL:    url,
			Source: SourceFallback,
			Note:   note,
		})
	}

	if slug := domainSlug(q.Company); slug != "" {
		add("https://"+slug+".com", "company domain guess")
		add("https://www.linkedin.com/company/"+hyphenSlug(q.Company), "company directory page")
	}

	if slug := hyphenSlug(q.Industry); slug != "" {
		add("https://www.g2.com/categories/"+slug, "industry directory")
	}

	if q.Role != "" && q.Company != "" {
		if slug := domainSlug(q.Company); slug != "" {
			add("https://"+slug+".com/about", "company team page guess")
		}
	}

	return candidates
}

// domainSlug lowercases the name and strips everything that cannot appear in
// a bare domain label. "Orum" -> "orum", "Acme Corp." -> "acmecorp".
func domainSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// hyphenSlug lowercases the name and joins words with hyphens, the shape
// most directory sites use for path segments.
func hyphenSlug(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(name)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "-")
}
