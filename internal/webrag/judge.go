package webrag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/groundhog-ai/groundhog/internal/llm"
)

// SearchQuery is the structured judgment of the query optimizer.
type SearchQuery struct {
	// OptimizedQuery is a 2-6 word search engine query.
	OptimizedQuery string `json:"optimized_query"`
	// Reasoning explains which key concepts the query targets.
	Reasoning string `json:"reasoning"`
}

// RelevanceDecision is the structured judgment of cached-context sufficiency.
type RelevanceDecision struct {
	NeedsSearch bool   `json:"needs_search"`
	Reasoning   string `json:"reasoning"`
}

// FirstRunSearchDecision is the structured judgment of first-run necessity.
type FirstRunSearchDecision struct {
	NeedsWebSearch bool   `json:"needs_web_search"`
	Reasoning      string `json:"reasoning"`
}

// Completer is the model surface the judges need.
type Completer interface {
	Complete(ctx context.Context, messages []llm.ChatMessage) (string, error)
	CompleteStructured(ctx context.Context, messages []llm.ChatMessage, out any) error
}

// historyWindow is how many prior messages the query optimizer sees.
const historyWindow = 5

// judgeSearchQuery asks the model for an optimized search query built from
// the latest user message and recent history.
func judgeSearchQuery(ctx context.Context, model Completer, userQuery string, history []llm.ChatMessage, now time.Time) (SearchQuery, error) {
	var historyBlock string
	if len(history) > 0 {
		recent := history
		if len(recent) > historyWindow {
			recent = recent[len(recent)-historyWindow:]
		}
		var parts []string
		for _, msg := range recent {
			switch msg.Role {
			case llm.RoleUser:
				parts = append(parts, "User: "+msg.Content)
			case llm.RoleAssistant:
				parts = append(parts, "Assistant: "+msg.Content)
			}
		}
		if len(parts) > 0 {
			historyBlock = "Conversation history:\n" + strings.Join(parts, "\n") + "\n\n"
		}
	}

	prompt := fmt.Sprintf(`Based on the following conversation and user question, generate an optimized search query that will help find the most relevant and current information using keywords.

Today's date is %s.

%sCurrent user question: %s

Instructions:
- Create a concise search query (2-6 words) that captures the key concepts
- Focus on specific, searchable terms rather than conversational language
- Remove question words like "what", "how", "why" unless they're essential
- Include relevant keywords that would appear in authoritative sources
- Consider the conversation context to understand what the user is really asking about
- If this is a follow-up question, incorporate relevant context from the conversation

Respond with JSON: {"optimized_query": "...", "reasoning": "..."}`,
		now.Format("2006-01-02"), historyBlock, userQuery)

	var out SearchQuery
	err := model.CompleteStructured(ctx, []llm.ChatMessage{{Role: llm.RoleSystem, Content: prompt}}, &out)
	if err != nil {
		return SearchQuery{}, err
	}
	if strings.TrimSpace(out.OptimizedQuery) == "" {
		return SearchQuery{}, fmt.Errorf("empty optimized query")
	}
	return out, nil
}

// fallbackSearchQuery is the recovery policy when query optimization fails:
// use the user's message verbatim and surface a diagnostic.
func fallbackSearchQuery(userQuery string) (SearchQuery, string) {
	return SearchQuery{OptimizedQuery: userQuery, Reasoning: "query optimization failed"},
		fmt.Sprintf("Query optimization failed, using original query: %q", userQuery)
}

// judgeFirstRunNeed asks the model whether the question requires live web
// data at all.
func judgeFirstRunNeed(ctx context.Context, model Completer, userQuery string, now time.Time) (FirstRunSearchDecision, error) {
	prompt := fmt.Sprintf(`Analyze whether this user question requires current web information or can be answered with general knowledge.

Today's date is %s.

User question: %s

NEEDS WEB SEARCH if the question asks about:
- Current events, news, or recent developments
- Real-time information (stock prices, weather, etc.)
- Recent product releases or updates
- Current status of companies, people, or projects
- Latest research findings or publications
- Up-to-date statistics or data
- Recent changes in laws, policies, or regulations
- Current availability, pricing, or specifications
- Time-sensitive information that changes frequently

DOES NOT NEED WEB SEARCH if the question is about:
- General knowledge that doesn't change frequently
- Historical facts or well-established information
- Theoretical concepts or explanations
- Basic how-to questions with standard procedures
- Definitions or explanations of established concepts
- Mathematical or scientific principles
- Programming concepts or general coding help

Be conservative: if in doubt about whether current information is needed, choose to search.

Respond with JSON: {"needs_web_search": true/false, "reasoning": "..."}`,
		now.Format("2006-01-02"), userQuery)

	var out FirstRunSearchDecision
	err := model.CompleteStructured(ctx, []llm.ChatMessage{{Role: llm.RoleSystem, Content: prompt}}, &out)
	if err != nil {
		return FirstRunSearchDecision{}, err
	}
	return out, nil
}

// fallbackFirstRunNeed is the conservative default when the first-run
// judgment fails: assume a search is needed.
func fallbackFirstRunNeed() FirstRunSearchDecision {
	return FirstRunSearchDecision{NeedsWebSearch: true, Reasoning: "analysis failed, defaulting to search"}
}

// relevanceContextWindow caps how much cached context the judge sees.
const relevanceContextWindow = 2000

// judgeRelevance asks the model whether the cached context is relevant,
// complete, fresh and credible enough to skip a new search.
func judgeRelevance(ctx context.Context, model Completer, userQuery, optimizedQuery, existingContext string, now time.Time) (RelevanceDecision, error) {
	shown := existingContext
	if len(shown) > relevanceContextWindow {
		shown = shown[:relevanceContextWindow]
	}
	if strings.TrimSpace(shown) == "" {
		shown = "No existing context found"
	}

	prompt := fmt.Sprintf(`You are an intelligent relevance assessor. Analyze whether the existing context is sufficient to answer the user's question, or if a new web search is needed.

Today's date is %s.

User's original question: %s
Optimized search query: %s

Existing context from previous searches (%d characters):
%s

Assessment criteria:
1. Context relevance: Does the existing context directly relate to the user's question?
2. Context completeness: Is there enough information to provide a comprehensive answer?
3. Context freshness: For time-sensitive queries, is the information recent enough?
4. Context quality: Is the information detailed and from credible sources?

needs_search = true if the context is missing, irrelevant, too brief, outdated or unreliable.
needs_search = false if the context is relevant, comprehensive, current enough and credible.

Respond with JSON: {"needs_search": true/false, "reasoning": "..."}`,
		now.Format("2006-01-02"), userQuery, optimizedQuery,
		len(strings.TrimSpace(existingContext)), shown)

	var out RelevanceDecision
	err := model.CompleteStructured(ctx, []llm.ChatMessage{{Role: llm.RoleSystem, Content: prompt}}, &out)
	if err != nil {
		return RelevanceDecision{}, err
	}
	return out, nil
}

// relevanceFallbackThreshold is the minimum trimmed context length the
// heuristic accepts as sufficient when the judgment call fails.
const relevanceFallbackThreshold = 100

// fallbackRelevance is the heuristic substitute when the relevance judgment
// fails: context is sufficient iff it is longer than the threshold.
func fallbackRelevance(existingContext string) RelevanceDecision {
	sufficient := len(strings.TrimSpace(existingContext)) > relevanceFallbackThreshold
	return RelevanceDecision{NeedsSearch: !sufficient, Reasoning: "relevance assessment failed, using length heuristic"}
}
