// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devlens-io/devlens/internal/domain"
	"github.com/devlens-io/devlens/internal/embedding"
	"github.com/devlens-io/devlens/internal/store"
	"github.com/devlens-io/devlens/internal/usecase"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyzes collected activity for a user and outputs a report as JSON",
	Long: `Analyzes the collected activity of a GitHub user. With --query, only the
activities semantically relevant to the query text are aggregated; without
it, the most recent activities are used. The result is a structured report
(temporal breakdown, per-repository engagement, velocity, collaboration)
printed as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)

		user, _ := cmd.Flags().GetString("user")
		intent, _ := cmd.Flags().GetString("query")
		maxResults, _ := cmd.Flags().GetInt("max-results")

		// Only an explicitly set flag overrides the configured threshold;
		// zero is a legitimate override value.
		var threshold *float64
		if cmd.Flags().Changed("threshold") {
			value, _ := cmd.Flags().GetFloat64("threshold")
			threshold = &value
		}

		activityStore, err := store.Open(dbPath(cmd), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open activity store: %v\n", err)
			os.Exit(1)
		}
		defer activityStore.Close()

		embedder, err := embedding.NewService(embedding.Config{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			BaseURL:    viper.GetString("embedding-base-url"),
			Model:      viper.GetString("embedding-model"),
			Dimensions: viper.GetInt("embedding-dimensions"),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create embedding service: %v\n", err)
			os.Exit(1)
		}

		cfg := domain.Config{
			MaxResults:          viper.GetInt("max-results"),
			SimilarityThreshold: viper.GetFloat64("similarity-threshold"),
			RecentWindowMonths:  viper.GetInt("recent-window-months"),
			GapThreshold:        time.Duration(viper.GetInt("gap-threshold-days")) * 24 * time.Hour,
		}

		analyzer := usecase.NewAnalyzer(activityStore, embedder, cfg, logger)
		report, err := analyzer.Analyze(ctx, domain.Query{
			Subject:             user,
			IntentText:          intent,
			MaxResults:          maxResults,
			SimilarityThreshold: threshold,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to analyze activity: %v\n", err)
			os.Exit(1)
		}

		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal report to JSON: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("user", "u", "", "Target GitHub user name (required)")
	analyzeCmd.MarkFlagRequired("user")
	analyzeCmd.Flags().StringP("query", "q", "", "Free-text intent; empty means most recent activities")
	analyzeCmd.Flags().Int("max-results", 0, "Cap on retrieved activities (0 = configured default)")
	analyzeCmd.Flags().Float64("threshold", 0, "Minimum normalized similarity in [0,1] (unset = configured default)")
}
