package webrag

// Stage identifies a progress phase within a turn, for UI reporting.
type Stage string

const (
	StageFirstRunCheck  Stage = "first_run_check"
	StageQueryOptimize  Stage = "query_optimize"
	StageRelevanceCheck Stage = "relevance_check"
	StageWebSearch      Stage = "web_search"
	StageStore          Stage = "store"
	StageRespond        Stage = "respond"
)

// Event reports turn progress to an observer.
type Event struct {
	Stage  Stage
	Detail string
}

// EventFunc receives progress events. Called synchronously from the turn
// goroutine; must not block.
type EventFunc func(Event)

func (a *Agent) emit(stage Stage, detail string) {
	if a.onEvent != nil {
		a.onEvent(Event{Stage: stage, Detail: detail})
	}
}
