// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variable names understood by the loader.
const (
	EnvConfigFile             = "EVIDENCE_CONFIG_FILE"
	EnvSerpAPIKey             = "EVIDENCE_SERPAPI_KEY"
	EnvExternalSearchEnabled  = "EVIDENCE_EXTERNAL_SEARCH"
	EnvSecondaryEnabled       = "EVIDENCE_SECONDARY_SEARCH"
	EnvProviderTimeoutSeconds = "EVIDENCE_PROVIDER_TIMEOUT_SECONDS"
	EnvTotalBudgetSeconds     = "EVIDENCE_TOTAL_BUDGET_SECONDS"
	EnvMaxResultsPerQuery     = "EVIDENCE_MAX_RESULTS"
	EnvFallbackEnabled        = "EVIDENCE_FALLBACK_ENABLED"
	EnvMaxConcurrentLookups   = "EVIDENCE_MAX_CONCURRENT"
	EnvCacheTTLSeconds        = "EVIDENCE_CACHE_TTL_SECONDS"
)

// LoadEnv loads environment variables from local .env files, if present.
func LoadEnv(logger *logrus.Logger) {
	files := []string{".env", ".env.dev"}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if logger == nil {
		return
	}
	if len(loaded) == 0 {
		logger.Debug("No local env files loaded; relying on process environment")
	} else {
		logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
	}
}

// Load resolves the service configuration from an optional YAML file plus
// the process environment, then validates it. Any failure substitutes the
// fully-populated defaults with a logged warning: the returned Config is
// never partial or malformed, whatever the sources looked like.
func Load(logger *logrus.Logger) Config {
	cfg, err := load()
	if err != nil {
		if logger != nil {
			logger.WithError(err).Warn("Invalid configuration, substituting defaults")
		}
		return DefaultConfig()
	}
	return cfg
}

func load() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.ServiceName = GetEnv("SERVICE_NAME", cfg.ServiceName)
	cfg.Port = GetEnv("PORT", cfg.Port)
	cfg.LogLevel = GetEnv("LOG_LEVEL", cfg.LogLevel)

	search := &cfg.Search
	search.SerpAPIKey = GetEnv(EnvSerpAPIKey, search.SerpAPIKey)
	// External search switches on when a credential shows up, unless the
	// operator overrides it explicitly.
	search.ExternalSearchEnabled = GetEnvBool(EnvExternalSearchEnabled, search.SerpAPIKey != "")
	search.SecondaryEnabled = GetEnvBool(EnvSecondaryEnabled, search.SecondaryEnabled)
	search.ProviderTimeoutSeconds = GetEnvInt(EnvProviderTimeoutSeconds, search.ProviderTimeoutSeconds)
	search.TotalBudgetSeconds = GetEnvInt(EnvTotalBudgetSeconds, search.TotalBudgetSeconds)
	search.MaxResultsPerQuery = GetEnvInt(EnvMaxResultsPerQuery, search.MaxResultsPerQuery)
	search.FallbackEnabled = GetEnvBool(EnvFallbackEnabled, search.FallbackEnabled)
	search.MaxConcurrentLookups = GetEnvInt(EnvMaxConcurrentLookups, search.MaxConcurrentLookups)
	search.CacheTTLSeconds = GetEnvInt(EnvCacheTTLSeconds, search.CacheTTLSeconds)

	if err := search.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "search configuration failed validation")
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return nil
}

// GetEnv gets an environment variable with a default value.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an integer environment variable with a default value.
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetEnvBool gets a boolean environment variable with a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetLogLevel parses LOG_LEVEL into a logrus level.
func GetLogLevel() logrus.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
