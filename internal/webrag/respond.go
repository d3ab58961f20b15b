package webrag

import (
	"context"
	"fmt"
	"time"

	"github.com/groundhog-ai/groundhog/internal/llm"
	"github.com/groundhog-ai/groundhog/internal/retrieval"
	"github.com/groundhog-ai/groundhog/internal/store"
)

// retrievalK is the top-k used when pulling cached context for answering.
const retrievalK = 5

// relevanceScoreThreshold filters weak matches when probing cached context.
const relevanceScoreThreshold = 0.3

func groundedPrompt(context string, now time.Time) string {
	return fmt.Sprintf(`You are a helpful assistant that provides comprehensive answers based on recent web search results.
Use the following context from web searches to answer the user's question.

Today's date is %s.

Context from web search:
%s

Instructions:
- Provide a comprehensive and well-structured answer based on the search results
- Include relevant details and examples from the context
- When mentioning specific information, reference the sources when possible
- If the context doesn't contain enough information to fully answer the question, acknowledge this
- Be accurate and don't make up information not present in the context
- Use markdown formatting for better readability (headers, lists, etc.)
- If there are multiple perspectives or sources, present them fairly`,
		now.Format("January 2, 2006"), context)
}

func generalKnowledgePrompt(now time.Time) string {
	return fmt.Sprintf(`You are a helpful assistant that provides comprehensive answers using your general knowledge.

Today's date is %s.

Instructions:
- Provide a comprehensive and well-structured answer based on your knowledge
- Use markdown formatting for better readability (headers, lists, etc.)
- If you're not certain about current information that might have changed recently, mention this limitation
- Be accurate and acknowledge if you don't have specific current information`,
		now.Format("January 2, 2006"))
}

// respond runs the single final completion: either grounded in the thread's
// cached chunks or from general knowledge. No internal retry; a model failure
// propagates to the caller as an error-bearing turn.
func (a *Agent) respond(ctx context.Context, st TurnState, collection, userQuery string, history []llm.ChatMessage) (string, bool, error) {
	var system string
	grounded := false

	if st.HasSearchData {
		results, err := a.vectors.Query(ctx, collection, userQuery, store.QueryOptions{K: retrievalK})
		if err != nil {
			return "", false, fmt.Errorf("retrieve cached context: %w", err)
		}
		system = groundedPrompt(retrieval.FormatContext(results), a.now())
		grounded = true
	} else {
		system = generalKnowledgePrompt(a.now())
	}

	messages := append([]llm.ChatMessage{{Role: llm.RoleSystem, Content: system}}, history...)

	var answer string
	var err error
	if a.onToken != nil {
		answer, err = a.stream(ctx, messages)
	} else {
		answer, err = a.model.Complete(ctx, messages)
	}
	if err != nil {
		return "", grounded, fmt.Errorf("generate response: %w", err)
	}
	return answer, grounded, nil
}

func (a *Agent) stream(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	streamer, ok := a.model.(interface {
		CompleteStream(ctx context.Context, messages []llm.ChatMessage, onToken func(string) error) (string, error)
	})
	if !ok {
		return a.model.Complete(ctx, messages)
	}
	return streamer.CompleteStream(ctx, messages, a.onToken)
}
