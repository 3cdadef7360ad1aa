// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultSearchConfig(t *testing.T) {
	cfg := DefaultSearchConfig()

	require.NoError(t, cfg.Validate(), "defaults must always validate")
	require.False(t, cfg.ExternalSearchEnabled, "external search stays off without a credential")
	require.True(t, cfg.FallbackEnabled)
	require.Positive(t, cfg.ProviderTimeoutSeconds)
	require.GreaterOrEqual(t, cfg.TotalBudgetSeconds, cfg.ProviderTimeoutSeconds)
}

func TestSearchConfigValidate(t *testing.T) {
	t.Run("rejects non-positive timeout", func(t *testing.T) {
		cfg := DefaultSearchConfig()
		cfg.ProviderTimeoutSeconds = 0
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects budget smaller than one provider timeout", func(t *testing.T) {
		cfg := DefaultSearchConfig()
		cfg.ProviderTimeoutSeconds = 5
		cfg.TotalBudgetSeconds = 3
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects external search with no usable provider", func(t *testing.T) {
		cfg := DefaultSearchConfig()
		cfg.ExternalSearchEnabled = true
		cfg.SerpAPIKey = ""
		cfg.SecondaryEnabled = false
		require.Error(t, cfg.Validate())
	})

	t.Run("accepts external search with only the secondary", func(t *testing.T) {
		cfg := DefaultSearchConfig()
		cfg.ExternalSearchEnabled = true
		cfg.SecondaryEnabled = true
		require.NoError(t, cfg.Validate())
	})
}

func TestContainer(t *testing.T) {
	container := NewContainer(DefaultConfig())

	require.Equal(t, "evidence-search", container.ServiceName())
	require.Equal(t, "8087", container.Port())

	updated := DefaultConfig()
	updated.Search.SerpAPIKey = "key"
	updated.Search.ExternalSearchEnabled = true
	container.Update(&updated)

	require.True(t, container.Search().ExternalSearchEnabled)

	// Update deep-copies, so mutating the source later must not leak in.
	updated.Search.SerpAPIKey = "changed"
	require.Equal(t, "key", container.Search().SerpAPIKey)
}

func TestConfigClone(t *testing.T) {
	original := DefaultConfig()
	clone := original.Clone()

	clone.Search.MaxResultsPerQuery = 99
	require.Equal(t, 5, original.Search.MaxResultsPerQuery)
}
