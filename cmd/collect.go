// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devlens-io/devlens/internal/embedding"
	"github.com/devlens-io/devlens/internal/gateway"
	"github.com/devlens-io/devlens/internal/store"
	"github.com/devlens-io/devlens/internal/usecase"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collects a user's GitHub activity into the local store",
	Long: `Collects pull requests, issues, comments and repository creations for a
GitHub user, embeds their text, and upserts everything into the local
activity store. Re-running updates records in place.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)

		user, _ := cmd.Flags().GetString("user")
		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		githubGateway, err := gateway.NewGitHubGateway(token, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

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

		activityStore, err := store.Open(dbPath(cmd), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open activity store: %v\n", err)
			os.Exit(1)
		}
		defer activityStore.Close()

		collector := usecase.NewCollector(githubGateway, embedder, activityStore, logger)
		stored, err := collector.Collect(ctx, user)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to collect activity: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Collected %d records for %s\n", stored, user)
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().StringP("user", "u", "", "Target GitHub user name (required)")
	collectCmd.MarkFlagRequired("user")
}
