// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wikiresearch CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/wiki-research/internal/logging"
	"github.com/pdiddy/wiki-research/internal/research"
	"github.com/pdiddy/wiki-research/internal/secrets"
	"github.com/pdiddy/wiki-research/internal/store"
	"github.com/pdiddy/wiki-research/internal/wiki"
	"github.com/pdiddy/wiki-research/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds values loaded from the secrets directory at startup.
	loadedSecrets secrets.Secrets

	// logger is built in PersistentPreRunE from --log-level and --verbose.
	logger = zap.NewNop()
)

// rootCmd is the base command for the wikiresearch CLI.
var rootCmd = &cobra.Command{
	Use:   "wikiresearch",
	Short: "Research a topic on Wikipedia and keep a local reading list",
	Long: `wikiresearch turns a free-text query into a short research summary of the
best matching Wikipedia article: title, extract, link, and related pages.

Successful lookups are recorded in a local history. Articles can be saved for
later, listed, and exported. The serve subcommand exposes the same operations
as a JSON API for browser front ends.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetString("log_level"), viper.GetBool("verbose"))
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(viper.GetString("secrets_dir"), logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if keys := s.Keys(); len(keys) > 0 {
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./wikiresearch.yaml or ~/.config/wikiresearch/wikiresearch.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "directory holding the history and saved-article database")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "human-readable debug logging")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of secret files (contact-email)")

	_ = viper.BindPFlag("store.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("secrets_dir", rootCmd.PersistentFlags().Lookup("secrets-dir"))

	viper.SetDefault("source.timeout", 15*time.Second)
	viper.SetDefault("source.user_agent", "wiki-research/"+version)
	viper.SetDefault("source.api_base", wiki.DefaultAPIBase)
	viper.SetDefault("source.rest_base", wiki.DefaultRESTBase)
	viper.SetDefault("store.max_history", store.DefaultMaxHistory)
	viper.SetDefault("serve.addr", ":8080")
	viper.SetDefault("serve.shutdown_timeout", 10*time.Second)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wikiresearch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wikiresearch"))
		}
	}

	viper.SetEnvPrefix("WIKIRESEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged flag, env, and file settings.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func newClient(cfg types.Config) *wiki.Client {
	src := cfg.Source
	src.UserAgent = loadedSecrets.UserAgent(src.UserAgent)
	return wiki.NewClient(src)
}

func newResearcher(client *wiki.Client) *research.Researcher {
	return research.New(client, research.WithLogger(logger.Named("research")))
}

func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.NewStore(cfg.Store)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
