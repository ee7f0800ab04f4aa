// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the seqatlas CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/seqatlas/internal/refdata"
	"github.com/pdiddy/seqatlas/internal/secrets"
	"github.com/pdiddy/seqatlas/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const secretsDir = ".secrets/"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// apiKey resolves the analysis-service key: config file or environment
// first, then the secrets directory.
func apiKey() string {
	if v := viper.GetString("api.key"); v != "" {
		return v
	}
	return loadedSecrets[secrets.APIKeyFile]
}

// rootCmd is the base command for the seqatlas CLI.
var rootCmd = &cobra.Command{
	Use:   "seqatlas",
	Short: "DNA sequence similarity analysis against a reference collection",
	Long: `seqatlas submits a DNA sequence to an asynchronous analysis service, polls
the job to completion, and places the ranked similarity hits on the service's
reference collection. Hits are resolved against a locally cached copy of the
collection, filtered by similarity and collection year, and rendered as a
results table plus a per-country summary.

Each pipeline stage is reachable on its own: analyze runs the full upload to
render flow, resolve checks identifiers against the cached collection,
refresh replaces the local snapshot, and timelapse replays a saved result
set year by year.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}
		loadedSecrets = s

		// A key passed on the command line is kept for later runs.
		if flagKey, _ := cmd.Flags().GetString("api-key"); flagKey != "" {
			if err := secrets.Save(secretsDir, secrets.APIKeyFile, flagKey); err != nil {
				return err
			}
			loadedSecrets[secrets.APIKeyFile] = flagKey
			fmt.Fprintf(os.Stderr, "Saved API key to %s%s\n", secretsDir, secrets.APIKeyFile)
		}

		if len(loadedSecrets) > 0 {
			keys := make([]string, 0, len(loadedSecrets))
			for k := range loadedSecrets {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./seqatlas.yaml or ~/.config/seqatlas/config.yaml)")
	rootCmd.PersistentFlags().String("api-key", "", "analysis service API key (saved to .secrets/ for later runs)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("seqatlas")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "seqatlas"))
		}
	}

	viper.SetEnvPrefix("SEQATLAS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api.base_url", "http://localhost:8000")
	viper.SetDefault("api.timeout", 30*time.Second)
	viper.SetDefault("api.user_agent", "seqatlas/0.1")
	viper.SetDefault("job.poll_interval", 5*time.Second)
	viper.SetDefault("job.max_attempts", 60)
	viper.SetDefault("job.result_count", 50)
	viper.SetDefault("cache.dir", "cache")
	viper.SetDefault("cache.snapshot_ttl", 24*time.Hour)
	viper.SetDefault("resolver.strip_prefixes", []string{"NZ_"})
	viper.SetDefault("resolver.allow_substring", false)
	viper.SetDefault("player.tick_interval", time.Second)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the component configuration from viper. Flag
// overrides happen in the subcommands.
func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		API: types.APIConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("api.timeout"),
				UserAgent: viper.GetString("api.user_agent"),
			},
			BaseURL: viper.GetString("api.base_url"),
			Key:     apiKey(),
		},
		Job: types.JobConfig{
			PollInterval: viper.GetDuration("job.poll_interval"),
			MaxAttempts:  viper.GetInt("job.max_attempts"),
			ResultCount:  viper.GetInt("job.result_count"),
		},
		Cache: types.CacheConfig{
			Dir:         viper.GetString("cache.dir"),
			SnapshotTTL: viper.GetDuration("cache.snapshot_ttl"),
		},
		Resolver: types.ResolverConfig{
			StripPrefixes:  viper.GetStringSlice("resolver.strip_prefixes"),
			AllowSubstring: viper.GetBool("resolver.allow_substring"),
		},
		Player: types.PlayerConfig{
			TickInterval: viper.GetDuration("player.tick_interval"),
		},
	}
}

// openCache wires the reference cache over fetcher, with a local sqlite
// snapshot when the cache directory is usable. The returned closer is safe
// to defer immediately.
func openCache(fetcher refdata.Fetcher, cfg types.CacheConfig) (*refdata.Cache, func()) {
	store, err := refdata.NewStore(cfg.Dir, cfg.SnapshotTTL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: reference snapshot unavailable: %v\n", err)
		return refdata.NewCache(fetcher, nil), func() {}
	}
	return refdata.NewCache(fetcher, store), func() { _ = store.Close() }
}

// discardKeyOnAuth drops the stored API key when the service rejected it,
// so the next run forces re-entry. The error passes through unchanged.
func discardKeyOnAuth(err error) error {
	var authErr *types.AuthError
	if errors.As(err, &authErr) {
		if derr := secrets.Discard(secretsDir, secrets.APIKeyFile); derr == nil {
			fmt.Fprintf(os.Stderr, "warning: analysis service rejected the API key; cleared any saved copy under %s\n",
				secretsDir)
		}
	}
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
