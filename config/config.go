// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package config

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

// RateLimitConfig bounds outbound provider calls across concurrent lookups.
type RateLimitConfig struct {
	Enabled           bool `json:"enabled" yaml:"enabled"`
	RequestsPerMinute int  `json:"requestsPerMinute" yaml:"requests_per_minute"`
	BurstSize         int  `json:"burstSize" yaml:"burst_size"`
}

// BreakerConfig configures the circuit breaker around each provider.
type BreakerConfig struct {
	MaxFailures     int `json:"maxFailures" yaml:"max_failures"`
	CooldownSeconds int `json:"cooldownSeconds" yaml:"cooldown_seconds"`
}

// SearchConfig holds the resolved evidence-search settings. It is
// constructed once at startup and read-only thereafter. The loader never
// hands out a partial instance: when loading or validation fails, the
// fully-populated defaults are substituted instead.
type SearchConfig struct {
	SerpAPIKey             string          `json:"serpApiKey" yaml:"serp_api_key"`
	ExternalSearchEnabled  bool            `json:"externalSearchEnabled" yaml:"external_search_enabled"`
	SecondaryEnabled       bool            `json:"secondaryEnabled" yaml:"secondary_enabled"`
	ProviderTimeoutSeconds int             `json:"providerTimeoutSeconds" yaml:"provider_timeout_seconds"`
	TotalBudgetSeconds     int             `json:"totalBudgetSeconds" yaml:"total_budget_seconds"`
	MaxResultsPerQuery     int             `json:"maxResultsPerQuery" yaml:"max_results_per_query"`
	FallbackEnabled        bool            `json:"fallbackEnabled" yaml:"fallback_enabled"`
	MaxConcurrentLookups   int             `json:"maxConcurrentLookups" yaml:"max_concurrent_lookups"`
	CacheTTLSeconds        int             `json:"cacheTtlSeconds" yaml:"cache_ttl_seconds"`
	RateLimit              RateLimitConfig `json:"rateLimit" yaml:"rate_limit"`
	Breaker                BreakerConfig   `json:"breaker" yaml:"breaker"`
}

// ProviderTimeout returns the per-provider call timeout.
func (c SearchConfig) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

// TotalBudget returns the wall-clock bound for one whole evidence lookup.
func (c SearchConfig) TotalBudget() time.Duration {
	return time.Duration(c.TotalBudgetSeconds) * time.Second
}

// CacheTTL returns how long provider results are cached.
func (c SearchConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate checks that the config is usable as-is. Callers that hit an error
// must fall back to DefaultSearchConfig rather than patching fields.
func (c SearchConfig) Validate() error {
	if c.ProviderTimeoutSeconds <= 0 {
		return fmt.Errorf("provider timeout must be positive, got %d", c.ProviderTimeoutSeconds)
	}
	if c.TotalBudgetSeconds < c.ProviderTimeoutSeconds {
		return fmt.Errorf("total budget (%ds) must cover at least one provider timeout (%ds)",
			c.TotalBudgetSeconds, c.ProviderTimeoutSeconds)
	}
	if c.MaxResultsPerQuery <= 0 {
		return fmt.Errorf("max results per query must be positive, got %d", c.MaxResultsPerQuery)
	}
	if c.MaxConcurrentLookups <= 0 {
		return fmt.Errorf("max concurrent lookups must be positive, got %d", c.MaxConcurrentLookups)
	}
	if c.ExternalSearchEnabled && c.SerpAPIKey == "" && !c.SecondaryEnabled {
		return fmt.Errorf("external search enabled but no provider is usable")
	}
	return nil
}

// DefaultSearchConfig returns the complete default configuration. External
// search stays disabled until a credential or explicit override enables it,
// so a fresh deployment serves fallback candidates instead of erroring.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		ExternalSearchEnabled:  false,
		SecondaryEnabled:       true,
		ProviderTimeoutSeconds: 5,
		TotalBudgetSeconds:     10,
		MaxResultsPerQuery:     5,
		FallbackEnabled:        true,
		MaxConcurrentLookups:   4,
		CacheTTLSeconds:        300,
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			BurstSize:         10,
		},
		Breaker: BreakerConfig{
			MaxFailures:     5,
			CooldownSeconds: 30,
		},
	}
}

// Config is the full service configuration.
type Config struct {
	ServiceName string       `json:"serviceName" yaml:"service_name"`
	Port        string       `json:"port" yaml:"port"`
	LogLevel    string       `json:"logLevel" yaml:"log_level"`
	Search      SearchConfig `json:"search" yaml:"search"`
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone, err := deepCopyJSON(*c)
	if err != nil {
		panic(fmt.Sprintf("failed to clone configuration: %v", err))
	}
	return &clone
}

// DefaultConfig returns the complete default service configuration.
func DefaultConfig() Config {
	return Config{
		ServiceName: "evidence-search",
		Port:        "8087",
		LogLevel:    "info",
		Search:      DefaultSearchConfig(),
	}
}

// Container provides shared read-only access to the configuration. It is
// populated once at startup; Update exists for tests and future reloads.
type Container struct {
	cfg atomic.Pointer[Config]
}

// NewContainer creates a container holding cfg.
func NewContainer(cfg Config) *Container {
	c := &Container{}
	c.cfg.Store(&cfg)
	return c
}

// Config returns the whole configuration readonly.
func (c *Container) Config() *Config {
	return c.cfg.Load()
}

// Search returns the evidence-search settings.
func (c *Container) Search() SearchConfig {
	cfg := c.cfg.Load()
	if cfg == nil {
		return DefaultSearchConfig()
	}
	return cfg.Search
}

// Port returns the HTTP listen port.
func (c *Container) Port() string {
	return c.cfg.Load().Port
}

// ServiceName returns the service name used in logs and health responses.
func (c *Container) ServiceName() string {
	return c.cfg.Load().ServiceName
}

// Update replaces the current configuration. The new configuration is
// deep-copied so the new and old instances are independent.
func (c *Container) Update(newConfig *Config) {
	c.cfg.Store(newConfig.Clone())
}

func deepCopyJSON[T any](v T) (T, error) {
	var out T
	data, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}
