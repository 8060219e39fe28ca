// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/citation-engine/internal/parser"
	"github.com/pdiddy/citation-engine/internal/secrets"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// envKeyReplacer maps "lookup.email" to CITATION_ENGINE_LOOKUP_EMAIL.
var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults() {
	viper.SetDefault("lookup.timeout", 30*time.Second)
	viper.SetDefault("lookup.user_agent", "citation-engine/"+version)
	viper.SetDefault("lookup.requests_per_second", 5.0)
	viper.SetDefault("lookup.max_retries", 3)

	names := make([]string, len(parser.DefaultParsers))
	for i, n := range parser.DefaultParsers {
		names[i] = string(n)
	}
	viper.SetDefault("fusion.parsers", names)
	viper.SetDefault("fusion.score_threshold", 0)

	viper.SetDefault("store.max_results", 20)
}

// loadConfig assembles the engine configuration from viper. The lookup
// e-mail falls back to the secrets directory.
func loadConfig() types.Config {
	email := viper.GetString("lookup.email")
	email = secretDefault(secrets.OpenAlexEmail, email)
	email = secretDefault(secrets.CrossrefEmail, email)

	var parsers []types.ParserName
	for _, n := range viper.GetStringSlice("fusion.parsers") {
		for _, part := range strings.Split(n, ",") {
			if part = strings.TrimSpace(part); part != "" {
				parsers = append(parsers, types.ParserName(part))
			}
		}
	}

	return types.Config{
		Lookup: types.LookupConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("lookup.timeout"),
				UserAgent: viper.GetString("lookup.user_agent"),
			},
			Email:             email,
			RequestsPerSecond: viper.GetFloat64("lookup.requests_per_second"),
			MaxRetries:        viper.GetInt("lookup.max_retries"),
		},
		Fusion: types.FusionConfig{
			ScoreThreshold: viper.GetInt("fusion.score_threshold"),
			Parsers:        parsers,
		},
		Store: types.StoreConfig{
			Dir:        viper.GetString("store.dir"),
			MaxResults: viper.GetInt("store.max_results"),
		},
		Logging: loggingConfig(),
	}
}

func loggingConfig() types.LoggingConfig {
	return types.LoggingConfig{
		Level:          viper.GetString("logging.level"),
		Format:         viper.GetString("logging.format"),
		FilePath:       viper.GetString("logging.file_path"),
		FileMaxSizeMB:  viper.GetInt("logging.file_max_size_mb"),
		FileMaxBackups: viper.GetInt("logging.file_max_backups"),
	}
}
