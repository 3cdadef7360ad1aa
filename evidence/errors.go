// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package evidence

import (
	"errors"

	"github.com/ChrisAnz19/evidence-search/websearch"
)

// Error kinds distinguished by the coordinator. The provider-facing kinds
// are the websearch sentinels re-exported under their domain names, so
// errors.Is matches across both packages.
var (
	// ErrConfiguration means a provider cannot run at all (missing
	// credential, malformed settings). The coordinator skips the provider
	// for the rest of the request instead of retrying.
	ErrConfiguration = websearch.ErrNotConfigured

	// ErrProviderUnavailable covers network failures, timeouts and non-2xx
	// responses. Not retried within a single evidence lookup.
	ErrProviderUnavailable = websearch.ErrUnavailable

	// ErrNoResults is the terminal state after every strategy produced an
	// empty list. Reported in the result message, never surfaced as a fault.
	ErrNoResults = errors.New("no results found")
)
