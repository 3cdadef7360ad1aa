// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package evidence

import (
	"github.com/ChrisAnz19/evidence-search/searchutil"
)

// Assemble merges per-candidate lookup results into one bounded list of
// evidence URLs. Candidates are deduplicated by normalized URL
// (case-insensitive, trailing slash stripped), provider-sourced candidates
// are kept ahead of fallback-sourced ones, relative order is preserved
// within each group, and the list is truncated to maxPerCandidate.
// Assemble never fails; no input yields an empty list.
func Assemble(results []SearchResult, maxPerCandidate int) []URLCandidate {
	if maxPerCandidate <= 0 {
		return []URLCandidate{}
	}

	var provider, fallback []URLCandidate
	seen := make(map[string]struct{})

	collect := func(source Source, into *[]URLCandidate) {
		for _, result := range results {
			for _, candidate := range result.Candidates {
				if candidate.Source != source {
					continue
				}
				key := searchutil.NormalizeURL(candidate.URL)
				if key == "" {
					continue
				}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				*into = append(*into, candidate)
			}
		}
	}

	// Provider candidates first so a URL seen from both sources keeps its
	// provider-sourced copy.
	collect(SourceProvider, &provider)
	collect(SourceFallback, &fallback)

	assembled := make([]URLCandidate, 0, len(provider)+len(fallback))
	assembled = append(assembled, provider...)
	assembled = append(assembled, fallback...)

	if len(assembled) > maxPerCandidate {
		assembled = assembled[:maxPerCandidate]
	}
	return assembled
}
