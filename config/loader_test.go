// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("no environment yields the defaults", func(t *testing.T) {
		cfg := Load(nil)

		require.Equal(t, DefaultConfig(), cfg)
		require.False(t, cfg.Search.ExternalSearchEnabled)
	})

	t.Run("credential enables external search", func(t *testing.T) {
		t.Setenv(EnvSerpAPIKey, "test-key")

		cfg := Load(nil)

		require.Equal(t, "test-key", cfg.Search.SerpAPIKey)
		require.True(t, cfg.Search.ExternalSearchEnabled)
	})

	t.Run("explicit override beats the credential heuristic", func(t *testing.T) {
		t.Setenv(EnvSerpAPIKey, "test-key")
		t.Setenv(EnvExternalSearchEnabled, "false")

		cfg := Load(nil)

		require.False(t, cfg.Search.ExternalSearchEnabled)
	})

	t.Run("numeric tunables come from the environment", func(t *testing.T) {
		t.Setenv(EnvProviderTimeoutSeconds, "3")
		t.Setenv(EnvTotalBudgetSeconds, "8")
		t.Setenv(EnvMaxResultsPerQuery, "7")

		cfg := Load(nil)

		require.Equal(t, 3, cfg.Search.ProviderTimeoutSeconds)
		require.Equal(t, 8, cfg.Search.TotalBudgetSeconds)
		require.Equal(t, 7, cfg.Search.MaxResultsPerQuery)
	})

	t.Run("invalid configuration substitutes full defaults", func(t *testing.T) {
		t.Setenv(EnvProviderTimeoutSeconds, "-1")

		cfg := Load(nil)

		require.Equal(t, DefaultConfig(), cfg)
		require.NoError(t, cfg.Search.Validate())
	})

	t.Run("yaml file feeds the config before env overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
service_name: evidence-search-staging
search:
  secondary_enabled: false
  max_results_per_query: 3
`), 0o600))
		t.Setenv(EnvConfigFile, path)
		t.Setenv(EnvMaxResultsPerQuery, "4")

		cfg := Load(nil)

		require.Equal(t, "evidence-search-staging", cfg.ServiceName)
		require.False(t, cfg.Search.SecondaryEnabled)
		require.Equal(t, 4, cfg.Search.MaxResultsPerQuery, "env wins over the file")
	})

	t.Run("unreadable file substitutes full defaults", func(t *testing.T) {
		t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))

		cfg := Load(nil)

		require.Equal(t, DefaultConfig(), cfg)
	})
}
