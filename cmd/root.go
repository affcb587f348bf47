// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devlens-io/devlens/internal/domain"
)

var rootCmd = &cobra.Command{
	Use:   "devlens",
	Short: "A CLI tool to analyze a developer's GitHub activity with semantic retrieval.",
	Long: `devlens collects a user's GitHub activity (pull requests, issues,
comments, repository creations) into a local store, and answers queries
about it: a free-text intent selects the semantically relevant activities,
which are aggregated into a velocity and collaboration report.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("db", "", "Path to the activity store database (default devlens.db)")
}

// initConfig wires configuration sources: .env file, then .devlens.yaml,
// then DEVLENS_* environment variables, with explicit defaults for every
// tunable so none hide inside components.
func initConfig() {
	// Best effort: a missing .env is fine.
	_ = godotenv.Load()

	viper.SetConfigName(".devlens")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")

	viper.SetEnvPrefix("DEVLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("db", "devlens.db")
	viper.SetDefault("max-results", domain.DefaultMaxResults)
	viper.SetDefault("similarity-threshold", domain.DefaultSimilarityThreshold)
	viper.SetDefault("recent-window-months", domain.DefaultRecentWindowMonths)
	viper.SetDefault("gap-threshold-days", domain.DefaultGapThresholdDays)
	viper.SetDefault("embedding-model", "text-embedding-3-small")
	viper.SetDefault("embedding-dimensions", 1536)
	viper.SetDefault("embedding-base-url", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("warning: failed to read config file: %v", err)
		}
	}
}

// newLogger builds the command logger: discard by default, stderr when
// the persistent --verbose flag is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// dbPath resolves the store path from the flag, falling back to config.
func dbPath(cmd *cobra.Command) string {
	if path, _ := cmd.InheritedFlags().GetString("db"); path != "" {
		return path
	}
	return viper.GetString("db")
}
