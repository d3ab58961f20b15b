// Package cli provides the command-line interface for groundhog.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/groundhog-ai/groundhog/internal/config"
	"github.com/groundhog-ai/groundhog/internal/llm"
	"github.com/groundhog-ai/groundhog/internal/metrics"
	"github.com/groundhog-ai/groundhog/internal/store"
	"github.com/groundhog-ai/groundhog/internal/thread"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, logging and db client
	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
	dbClient *store.Client
	stats    = metrics.NewCollector()

	// Lazy-initialized LLM components
	embedder *llm.Embedder
	model    *llm.Model
	vectors  *store.VectorStore
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "groundhog",
	Short: "Web-grounded research assistant",
	Long: `Groundhog is a research assistant that knows when to search.

Its web agent decides per question whether live web data is needed, caches
search results in a per-conversation vector collection and answers grounded
in that cache. A second agent answers questions over a static personal
knowledge base built from a portfolio site and GitHub READMEs.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, closeLog = config.SetupLogger(cfg.LogFile, cfg.LogLevel)

		var err error
		ctx := context.Background()
		dbClient, err = store.NewClient(ctx, store.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx, cfg.EmbedDimension); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if verbose {
			printTimings()
		}
		if closeLog != nil {
			_ = closeLog()
		}
	},
}

// getLLM lazily initializes the completion model, embedder and vector store.
// Commands that only touch the database skip the provider setup entirely.
func getLLM(ctx context.Context) (*llm.Model, *store.VectorStore, error) {
	if model == nil {
		var err error
		model, err = llm.NewModel(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("init model: %w", err)
		}
		model.WithMetrics(stats)

		embedder, err = llm.NewEmbedder(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("init embedder: %w", err)
		}
		embedder.WithMetrics(stats)

		vectors = store.NewVectorStore(dbClient, embedder).WithMetrics(stats)
	}
	return model, vectors, nil
}

func threadStore() thread.Store {
	return thread.NewSurrealStore(dbClient)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(threadsCmd)
}

func printTimings() {
	snapshot := stats.GetSnapshot()
	if len(snapshot.Operations) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, "\nOperation timings:")
	for op, s := range snapshot.Operations {
		fmt.Fprintf(os.Stderr, "  %-14s count=%d avg=%.0fms total=%dms\n",
			op, s.Count, s.AvgTimeMs, s.TotalTimeMs)
	}
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
