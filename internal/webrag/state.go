// Package webrag implements the adaptive web-research agent: a per-turn
// retrieval state machine that decides when to search the web, caches results
// in a per-thread vector collection and answers either grounded in that cache
// or from general knowledge.
package webrag

import "fmt"

// State is a node of the per-turn retrieval state machine.
type State string

const (
	// StateCheckFirstRunNeed judges on the first turn whether the question
	// needs live web data at all. Entry point of every turn.
	StateCheckFirstRunNeed State = "check_first_run_need"
	// StateGenerateSearchQuery turns the conversation into a short keyword
	// search query.
	StateGenerateSearchQuery State = "generate_search_query"
	// StateCheckRelevance judges whether cached context is sufficient to
	// answer without a new search.
	StateCheckRelevance State = "check_relevance"
	// StateWebAcquireAndStore searches the web and stores chunked results in
	// the thread's collection. At most one visit per turn.
	StateWebAcquireAndStore State = "web_acquire_and_store"
	// StateRagResponse produces the final answer. Terminal.
	StateRagResponse State = "rag_response"
)

// TurnState is the per-thread state carried across turns. Zero values are not
// the defaults for a new thread; use NewTurnState.
type TurnState struct {
	// IsFirstRun is true until the thread's first turn completes.
	IsFirstRun bool
	// IsSearchRelevant records whether the turn has context considered
	// sufficient, from cache, a fresh search or general knowledge.
	IsSearchRelevant bool
	// OptimizedQuery is the last generated search query.
	OptimizedQuery string
	// HasSearchData records whether the thread's collection holds search
	// results. Monotone: never reset except by explicit cleanup.
	HasSearchData bool
}

// NewTurnState returns the state of a brand-new thread.
func NewTurnState() TurnState {
	return TurnState{IsFirstRun: true}
}

// Validate rejects state combinations that cannot arise from the machine's
// transitions. Called at the orchestrator boundary on persisted state.
func (s TurnState) Validate() error {
	if s.IsFirstRun && s.HasSearchData {
		return fmt.Errorf("invalid turn state: has_search_data before first run completed")
	}
	return nil
}

// CollectionName derives the thread's ephemeral collection name. Pure and
// injective in the thread id; both turns of a thread and its cleanup must
// agree on this mapping.
func CollectionName(threadID string) string {
	return "web_search_" + threadID
}
