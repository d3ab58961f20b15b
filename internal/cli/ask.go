package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groundhog-ai/groundhog/internal/assistant"
	"github.com/groundhog-ai/groundhog/internal/llm"
	"github.com/groundhog-ai/groundhog/internal/retrieval"
)

var askBudget int

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask about the personal knowledge base",
	Long: `Ask a question about the ingested projects and resume.

The model plans a small set of filtered searches over the knowledge base,
runs them within a step budget and synthesizes a grounded answer.

Examples:
  groundhog ask "What Python projects are there?"
  groundhog ask "Where did you work before?"
  groundhog ask "Summarize the knowhow project readme"`,
	Args: cobra.ExactArgs(1),
	RunE: runAskCmd,
}

func init() {
	askCmd.Flags().IntVar(&askBudget, "budget", assistant.DefaultStepBudget, "max retrieval steps")
}

func runAskCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	model, vectors, err := getLLM(ctx)
	if err != nil {
		return err
	}

	a := assistant.New(model, retrieval.NewGateway(vectors), logger).WithStepBudget(askBudget)

	answer, err := a.Answer(ctx, []llm.ChatMessage{{Role: llm.RoleUser, Content: args[0]}})
	if err != nil {
		return fmt.Errorf("answer: %w", err)
	}

	fmt.Println(answer)
	return nil
}
