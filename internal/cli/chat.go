package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/groundhog-ai/groundhog/internal/llm"
	"github.com/groundhog-ai/groundhog/internal/thread"
	"github.com/groundhog-ai/groundhog/internal/webrag"
	"github.com/groundhog-ai/groundhog/internal/websearch"
)

var (
	chatThreadID string
	chatNoUI     bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the web-research agent",
	Long: `Start an interactive conversation with the web-research agent.

The agent decides per question whether to search the web. Search results are
cached in a collection tied to the conversation thread, so follow-up
questions reuse them instead of searching again.

Use --thread to resume an earlier conversation.

Examples:
  groundhog chat
  groundhog chat --thread t42`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatThreadID, "thread", "", "thread id to resume (default: new thread)")
	chatCmd.Flags().BoolVar(&chatNoUI, "no-ui", false, "disable the progress UI")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	model, vectors, err := getLLM(ctx)
	if err != nil {
		return err
	}
	searcher, err := websearch.NewTavily(cfg.TavilyAPIKey)
	if err != nil {
		return fmt.Errorf("web search unavailable: %w", err)
	}
	searcher.WithMetrics(stats)

	agent := webrag.NewAgent(model, searcher, vectors, logger)
	threads := threadStore()

	threadID := chatThreadID
	if threadID == "" {
		threadID = uuid.NewString()[:8]
	}
	th, err := threads.Ensure(ctx, threadID)
	if err != nil {
		return fmt.Errorf("load thread: %w", err)
	}

	fmt.Printf("Thread %s (type /quit to exit, /cleanup to delete cached search data)\n\n", threadID)

	interactive := term.IsTerminal(int(os.Stdout.Fd())) && !chatNoUI
	state := webrag.TurnState{IsFirstRun: th.IsFirstRun, HasSearchData: th.HasSearchData}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/quit", "/exit":
			return nil
		case "/cleanup":
			if err := cleanupThread(ctx, agent, threads, threadID); err != nil {
				fmt.Fprintf(os.Stderr, "cleanup failed: %v\n", err)
				continue
			}
			fmt.Println("Thread data deleted.")
			th, err = threads.Ensure(ctx, threadID)
			if err != nil {
				return fmt.Errorf("recreate thread: %w", err)
			}
			state = webrag.NewTurnState()
			continue
		}

		history, err := loadHistory(ctx, threads, threadID)
		if err != nil {
			return err
		}
		history = append(history, llm.ChatMessage{Role: llm.RoleUser, Content: input})

		turn := webrag.Turn{ThreadID: threadID, State: state, Messages: history}

		var result webrag.TurnResult
		if interactive {
			result, err = runTurnWithProgress(ctx, agent, turn)
		} else {
			result, err = agent.RunTurn(ctx, turn)
		}
		if errors.Is(err, context.Canceled) {
			fmt.Println("Turn canceled.")
			continue
		}
		if err != nil {
			return err
		}

		for _, notice := range result.Notices {
			fmt.Println(dimNotice(notice))
		}
		fmt.Println(result.Answer)
		fmt.Println()

		state = result.State
		if err := threads.Append(ctx, threadID, string(llm.RoleUser), input); err != nil {
			return fmt.Errorf("persist message: %w", err)
		}
		if err := threads.Append(ctx, threadID, string(llm.RoleAssistant), result.Answer); err != nil {
			return fmt.Errorf("persist message: %w", err)
		}
		if err := threads.SetFlags(ctx, threadID, state.IsFirstRun, state.HasSearchData); err != nil {
			return fmt.Errorf("persist thread state: %w", err)
		}
	}

	return scanner.Err()
}

func loadHistory(ctx context.Context, threads thread.Store, threadID string) ([]llm.ChatMessage, error) {
	msgs, err := threads.Messages(ctx, threadID, 0)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	history := make([]llm.ChatMessage, 0, len(msgs)+1)
	for _, m := range msgs {
		history = append(history, llm.ChatMessage{Role: llm.Role(m.Role), Content: m.Content})
	}
	return history, nil
}

func cleanupThread(ctx context.Context, agent *webrag.Agent, threads thread.Store, threadID string) error {
	if err := agent.Cleanup(ctx, threadID); err != nil {
		return err
	}
	return threads.Delete(ctx, threadID)
}

func dimNotice(notice string) string {
	return defaultTheme.hintStyle().Render("· " + notice)
}
