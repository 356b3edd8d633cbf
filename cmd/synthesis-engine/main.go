// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the synthesis-engine CLI.
package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/synthesis-engine/internal/logging"
	"github.com/pdiddy/synthesis-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets map[string]string

	// logger is built from the --log-level and --log-json flags before any command runs.
	logger = zap.NewNop()
)

// rootCmd is the base command for the synthesis-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "synthesis-engine",
	Short: "Synthesize one composite document from many reference records",
	Long: `synthesis-engine reads structured reference records on a single topic,
analyzes how the sources agree and disagree, plans which sections the topic
supports, and writes each section from the matching evidence with inline
citations. Sections without evidence are omitted or marked unavailable, and
disagreements between sources are always flagged.

A generation backend (Claude or OpenAI) writes the prose when configured.
Without one the engine runs in standalone mode with deterministic
extractive prose.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetString("log.level"), viper.GetBool("log.json"))
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
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

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./synthesis-engine.yaml or ~/.config/synthesis-engine/synthesis-engine.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Bool("log-json", false, "write logs as JSON")
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.json", pf.Lookup("log-json"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("synthesis-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "synthesis-engine"))
		}
	}

	viper.SetEnvPrefix("SYNTHESIS_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setConfigDefaults()

	if err := viper.ReadInConfig(); err == nil {
		logger.Info("using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
