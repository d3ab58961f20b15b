package webrag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/groundhog-ai/groundhog/internal/llm"
	"github.com/groundhog-ai/groundhog/internal/store"
	"github.com/groundhog-ai/groundhog/internal/websearch"
)

// maxTurnSteps bounds state transitions per turn. The machine needs at most
// five; anything beyond that is a transition bug, answered with the
// exhaustion message instead of a loop.
const maxTurnSteps = 8

// exhaustionMessage terminates a turn that ran out of permitted steps.
const exhaustionMessage = "Sorry, need more steps to process this request."

// defaultUserQuery stands in when the history carries no user message.
const defaultUserQuery = "latest information"

// Agent is the web-research agent. One instance serves many threads; all
// per-thread state travels through Turn.
type Agent struct {
	model   Completer
	search  websearch.Searcher
	vectors VectorStore
	log     *slog.Logger

	onEvent EventFunc
	onToken func(token string) error

	now   func() time.Time
	newID func() string
}

// NewAgent creates a web-research agent over the given capabilities.
func NewAgent(model Completer, search websearch.Searcher, vectors VectorStore, log *slog.Logger) *Agent {
	if log == nil {
		log = slog.Default()
	}
	return &Agent{
		model:   model,
		search:  search,
		vectors: vectors,
		log:     log,
		now:     time.Now,
		newID:   newSourceID,
	}
}

// WithEvents attaches a progress observer.
func (a *Agent) WithEvents(fn EventFunc) *Agent {
	a.onEvent = fn
	return a
}

// WithStreaming streams final-answer tokens to fn as they are generated.
// Judgment calls never stream.
func (a *Agent) WithStreaming(fn func(token string) error) *Agent {
	a.onToken = fn
	return a
}

// Turn is one user turn of a conversation thread.
type Turn struct {
	ThreadID string
	// State is the thread's persisted turn state, NewTurnState for a fresh
	// thread.
	State TurnState
	// Messages is the full conversation history, latest user message last.
	Messages []llm.ChatMessage
}

// TurnResult is the outcome of one turn. State must be persisted by the
// caller before the next turn.
type TurnResult struct {
	State TurnState
	// Answer is the assistant's reply, always set.
	Answer string
	// Grounded reports whether the answer used cached web context.
	Grounded bool
	// Acquired reports whether this turn performed a web acquisition.
	Acquired bool
	// Notices are diagnostic messages surfaced alongside the answer, one per
	// recovered failure.
	Notices []string
}

// RunTurn executes one turn of the retrieval state machine. Capability
// failures are absorbed into fallbacks or notices; an error return means the
// input itself was invalid. Turns of the same thread must not run
// concurrently.
func (a *Agent) RunTurn(ctx context.Context, turn Turn) (TurnResult, error) {
	if turn.ThreadID == "" {
		return TurnResult{}, fmt.Errorf("missing thread id")
	}
	if err := turn.State.Validate(); err != nil {
		return TurnResult{}, err
	}

	st := turn.State
	collection := CollectionName(turn.ThreadID)
	userQuery := latestUserMessage(turn.Messages)
	result := TurnResult{}

	log := a.log.With("thread_id", turn.ThreadID)
	log.Info("turn started", "is_first_run", st.IsFirstRun, "has_search_data", st.HasSearchData)

	finish := func() (TurnResult, error) {
		st.IsFirstRun = false
		result.State = st
		log.Info("turn finished", "grounded", result.Grounded, "acquired", result.Acquired)
		return result, nil
	}

	state := StateCheckFirstRunNeed
	for steps := 0; ; steps++ {
		if steps >= maxTurnSteps {
			log.Error("turn exceeded step limit", "state", string(state))
			result.Answer = exhaustionMessage
			return finish()
		}

		switch state {

		case StateCheckFirstRunNeed:
			if !st.IsFirstRun {
				state = StateGenerateSearchQuery
				continue
			}
			a.emit(StageFirstRunCheck, "deciding whether web search is needed")
			decision, err := judgeFirstRunNeed(ctx, a.model, userQuery, a.now())
			if err != nil {
				log.Warn("first-run analysis failed, defaulting to search", "error", err)
				decision = fallbackFirstRunNeed()
			}
			if decision.NeedsWebSearch {
				st.IsSearchRelevant = false
				state = StateGenerateSearchQuery
			} else {
				// General knowledge suffices; no acquisition this turn.
				st.IsSearchRelevant = true
				state = StateRagResponse
			}
			log.Info("first-run decision", "needs_web_search", decision.NeedsWebSearch, "reasoning", decision.Reasoning)

		case StateGenerateSearchQuery:
			a.emit(StageQueryOptimize, "optimizing search query")
			query, err := judgeSearchQuery(ctx, a.model, userQuery, historyBefore(turn.Messages), a.now())
			if err != nil {
				log.Warn("query optimization failed, using raw query", "error", err)
				var notice string
				query, notice = fallbackSearchQuery(userQuery)
				result.Notices = append(result.Notices, notice)
			}
			st.OptimizedQuery = query.OptimizedQuery
			if st.IsFirstRun {
				state = StateWebAcquireAndStore
			} else {
				state = StateCheckRelevance
			}
			log.Info("search query generated", "query", st.OptimizedQuery)

		case StateCheckRelevance:
			a.emit(StageRelevanceCheck, "checking cached context")
			sufficient := a.checkRelevance(ctx, log, &st, &result, collection, userQuery)
			if sufficient {
				state = StateRagResponse
			} else {
				state = StateWebAcquireAndStore
			}

		case StateWebAcquireAndStore:
			if result.Acquired {
				// One acquisition per turn maximum.
				state = StateRagResponse
				continue
			}
			result.Acquired = true
			a.emit(StageWebSearch, "searching the web: "+st.OptimizedQuery)
			stored, err := a.acquire(ctx, st.OptimizedQuery, collection)
			if err != nil {
				log.Warn("web acquisition failed", "error", err)
				result.Notices = append(result.Notices, err.Error())
			} else {
				a.emit(StageStore, fmt.Sprintf("stored %d chunks", stored))
				st.IsSearchRelevant = true
				st.HasSearchData = true
				log.Info("web acquisition completed", "chunks", stored, "collection", collection)
			}
			state = StateRagResponse

		case StateRagResponse:
			a.emit(StageRespond, "generating response")
			answer, grounded, err := a.respond(ctx, st, collection, userQuery, turn.Messages)
			if err != nil {
				log.Error("response generation failed", "error", err)
				answer = fmt.Sprintf("Sorry, I couldn't generate a response: %v", err)
			}
			result.Answer = answer
			result.Grounded = grounded
			return finish()
		}
	}
}

// checkRelevance probes the thread's cached context and judges whether it is
// sufficient. A failed or empty retrieval forces a new search; a failed
// judgment falls back to the length heuristic.
func (a *Agent) checkRelevance(ctx context.Context, log *slog.Logger, st *TurnState, result *TurnResult, collection, userQuery string) bool {
	results, err := a.vectors.Query(ctx, collection, st.OptimizedQuery, store.QueryOptions{
		K:              retrievalK,
		ScoreThreshold: relevanceScoreThreshold,
	})
	if err != nil {
		log.Warn("cached context retrieval failed, forcing search", "error", err)
		result.Notices = append(result.Notices,
			fmt.Sprintf("No cached context available for %q, performing a web search.", st.OptimizedQuery))
		st.IsSearchRelevant = false
		return false
	}

	var parts []string
	for _, r := range results {
		parts = append(parts, r.Content)
	}
	existingContext := strings.Join(parts, "\n\n")

	if strings.TrimSpace(existingContext) == "" {
		log.Info("no cached context found, forcing search")
		st.IsSearchRelevant = false
		return false
	}

	decision, err := judgeRelevance(ctx, a.model, userQuery, st.OptimizedQuery, existingContext, a.now())
	if err != nil {
		log.Warn("relevance judgment failed, using length heuristic", "error", err)
		decision = fallbackRelevance(existingContext)
		result.Notices = append(result.Notices, "Relevance assessment failed, using cached context heuristic.")
	}

	sufficient := !decision.NeedsSearch
	st.IsSearchRelevant = sufficient
	if sufficient {
		st.HasSearchData = true
	}
	log.Info("relevance decision", "needs_search", decision.NeedsSearch, "reasoning", decision.Reasoning)
	return sufficient
}

// Cleanup deletes the thread's ephemeral collection. The only path that
// removes search data.
func (a *Agent) Cleanup(ctx context.Context, threadID string) error {
	return a.vectors.Delete(ctx, CollectionName(threadID))
}

func latestUserMessage(messages []llm.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[i].Content
		}
	}
	return defaultUserQuery
}

// historyBefore returns everything preceding the latest user message.
func historyBefore(messages []llm.ChatMessage) []llm.ChatMessage {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[:i]
		}
	}
	return messages
}
