package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groundhog-ai/groundhog/internal/store"
	"github.com/groundhog-ai/groundhog/internal/webrag"
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Manage conversation threads",
}

var threadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversation threads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		threads, err := threadStore().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list threads: %w", err)
		}
		if len(threads) == 0 {
			fmt.Println("No threads.")
			return nil
		}
		for _, t := range threads {
			cached := "no cached data"
			if t.HasSearchData {
				cached = "has cached data"
			}
			fmt.Printf("%-12s %s  updated %s\n", t.ID, cached, t.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var threadsCleanupCmd = &cobra.Command{
	Use:   "cleanup <thread-id>",
	Short: "Delete a thread and its cached search data",
	Long: `Delete a thread's messages, state and ephemeral search collection.

Cached search data never expires on its own; this is the explicit cleanup
path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		threadID := args[0]

		// The collection may not exist if the thread never searched; the
		// delete is a no-op then.
		vs := store.NewVectorStore(dbClient, nil)
		if err := vs.Delete(ctx, webrag.CollectionName(threadID)); err != nil {
			return fmt.Errorf("delete search data: %w", err)
		}
		if err := threadStore().Delete(ctx, threadID); err != nil {
			return fmt.Errorf("delete thread: %w", err)
		}
		fmt.Printf("Thread %s deleted.\n", threadID)
		return nil
	},
}

func init() {
	threadsCmd.AddCommand(threadsListCmd)
	threadsCmd.AddCommand(threadsCleanupCmd)
}
