// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChrisAnz19/evidence-search/api"
	"github.com/ChrisAnz19/evidence-search/config"
	"github.com/ChrisAnz19/evidence-search/evidence"
	"github.com/ChrisAnz19/evidence-search/logging"
	"github.com/ChrisAnz19/evidence-search/metrics"
	"github.com/ChrisAnz19/evidence-search/searchutil"
	"github.com/ChrisAnz19/evidence-search/server"
	"github.com/ChrisAnz19/evidence-search/websearch"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:          "evidence-server",
		Short:        "Evidence URL discovery service for prospect enrichment",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), searchCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger()
			config.LoadEnv(logger)

			cfg := config.Load(logger)
			container := config.NewContainer(cfg)

			m := metrics.NewMetrics(metrics.InstanceInfo{
				ServiceName: cfg.ServiceName,
				Version:     version,
			})

			coordinator, cleanup := buildCoordinator(cfg.Search, logger, m)
			defer cleanup()

			router := server.SetupRouter(logger)
			api.New(coordinator, container, m, logger).RegisterRoutes(router)

			return server.Start(server.DefaultConfig(cfg.ServiceName, cfg.Port), router, logger)
		},
	}
}

func searchCmd() *cobra.Command {
	var company, role, industry string
	var maxResults int

	cmd := &cobra.Command{
		Use:   "search [query text]",
		Short: "Run one evidence lookup and print the result as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger()
			config.LoadEnv(logger)

			cfg := config.Load(logger)
			if maxResults > 0 {
				cfg.Search.MaxResultsPerQuery = maxResults
			}

			coordinator, cleanup := buildCoordinator(cfg.Search, logger, nil)
			defer cleanup()

			query := evidence.SearchQuery{
				Company:  company,
				Role:     role,
				Industry: industry,
			}
			if len(args) > 0 {
				query.Text = args[0]
			}
			if query.IsEmpty() {
				return fmt.Errorf("query text or at least one hint is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Search.TotalBudget()+time.Second)
			defer cancel()

			result := coordinator.FindEvidence(ctx, query)
			result.Candidates = evidence.Assemble([]evidence.SearchResult{result}, cfg.Search.MaxResultsPerQuery)

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "company name hint")
	cmd.Flags().StringVar(&role, "role", "", "role hint")
	cmd.Flags().StringVar(&industry, "industry", "", "industry hint")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "maximum candidates to return")

	return cmd
}

// buildCoordinator wires providers, limiter and cache from the search
// config. The returned cleanup stops the limiter and cache goroutines.
func buildCoordinator(cfg config.SearchConfig, logger logging.Logger, m metrics.Metrics) (*evidence.Coordinator, func()) {
	searchLogger := logging.NewSearchAdapter(logger)
	httpClient := &http.Client{Timeout: cfg.ProviderTimeout()}

	breakerCfg := websearch.BreakerConfig{
		MaxFailures: uint32(cfg.Breaker.MaxFailures),
		Cooldown:    time.Duration(cfg.Breaker.CooldownSeconds) * time.Second,
	}

	var primary, secondary websearch.Provider
	if cfg.SerpAPIKey != "" {
		primary = websearch.NewBreakerProvider(
			websearch.NewSerpAPIProvider(cfg.SerpAPIKey, "", httpClient, searchLogger),
			breakerCfg, searchLogger)
	}
	if cfg.SecondaryEnabled {
		secondary = websearch.NewBreakerProvider(
			websearch.NewDuckDuckGoProvider("", httpClient, searchLogger),
			breakerCfg, searchLogger)
	}

	var limiter *searchutil.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = searchutil.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize)
	}

	var cache *searchutil.TTLCache
	if cfg.CacheTTLSeconds > 0 {
		cache = searchutil.NewTTLCache(cfg.CacheTTL())
	}

	var recorder evidence.Recorder
	if m != nil {
		recorder = m
	}

	coordinator := evidence.NewCoordinator(evidence.CoordinatorOpts{
		Config:    cfg,
		Primary:   primary,
		Secondary: secondary,
		Generator: evidence.NewFallbackGenerator(),
		Limiter:   limiter,
		Cache:     cache,
		Metrics:   recorder,
		Logger:    searchLogger,
	})

	cleanup := func() {
		if limiter != nil {
			limiter.Close()
		}
		if cache != nil {
			cache.Close()
		}
	}

	return coordinator, cleanup
}
