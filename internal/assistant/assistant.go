// Package assistant answers questions about the personal knowledge base: the
// fixed "projects" and "resume" collections. The model plans a small set of
// filtered searches, the assistant executes them within a step budget and
// synthesizes a grounded answer.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/groundhog-ai/groundhog/internal/llm"
	"github.com/groundhog-ai/groundhog/internal/retrieval"
)

// CollectionProjects and CollectionResume are the static knowledge base
// collections.
const (
	CollectionProjects = "projects"
	CollectionResume   = "resume"
)

// DefaultStepBudget caps retrieval steps per question.
const DefaultStepBudget = 5

// ExhaustionMessage terminates a question whose plan exceeds the budget.
const ExhaustionMessage = "Sorry, need more steps to process this request."

// SearchStep is one planned retrieval.
type SearchStep struct {
	// Collection is "projects" or "resume".
	Collection string `json:"collection"`
	// Query is the similarity search text.
	Query string `json:"query"`
	// ContentType filters projects ("readme" or "description"). Optional.
	ContentType string `json:"content_type,omitempty"`
	// Section filters the resume ("Work Experience", "Education", "Skills").
	// Optional.
	Section string `json:"section,omitempty"`
	// Tags filter projects by technology. Optional.
	Tags []string `json:"tags,omitempty"`
}

// RetrievalPlan is the model's structured plan for answering a question.
type RetrievalPlan struct {
	Searches  []SearchStep `json:"searches"`
	Reasoning string       `json:"reasoning"`
}

// Completer is the model surface the assistant needs.
type Completer interface {
	Complete(ctx context.Context, messages []llm.ChatMessage) (string, error)
	CompleteStructured(ctx context.Context, messages []llm.ChatMessage, out any) error
}

// Assistant answers questions over the static knowledge base.
type Assistant struct {
	model      Completer
	gateway    *retrieval.Gateway
	log        *slog.Logger
	stepBudget int
	now        func() time.Time
}

// New creates an assistant over the given model and retrieval gateway.
func New(model Completer, gateway *retrieval.Gateway, log *slog.Logger) *Assistant {
	if log == nil {
		log = slog.Default()
	}
	return &Assistant{
		model:      model,
		gateway:    gateway,
		log:        log,
		stepBudget: DefaultStepBudget,
		now:        time.Now,
	}
}

// WithStepBudget overrides the retrieval step budget.
func (a *Assistant) WithStepBudget(n int) *Assistant {
	if n > 0 {
		a.stepBudget = n
	}
	return a
}

// Answer responds to the latest user message in history, grounded in the
// knowledge base. Retrieval failures degrade to whatever context was
// gathered; only the final completion failure is returned as an error.
func (a *Assistant) Answer(ctx context.Context, history []llm.ChatMessage) (string, error) {
	userQuery := latestUserMessage(history)

	plan, err := a.plan(ctx, userQuery)
	if err != nil {
		a.log.Warn("retrieval planning failed, using keyword inference", "error", err)
		plan = fallbackPlan(userQuery)
	}
	a.log.Info("retrieval plan", "searches", len(plan.Searches), "reasoning", plan.Reasoning)

	steps := validSteps(plan.Searches)
	if len(steps) > a.stepBudget {
		a.log.Warn("retrieval plan exceeds step budget", "planned", len(steps), "budget", a.stepBudget)
		return ExhaustionMessage, nil
	}

	var blocks []string
	for _, step := range steps {
		text, err := a.gateway.Context(ctx, step.Collection, step.Query, retrieval.Options{
			Filter: retrieval.QueryFilter{
				ContentType: step.ContentType,
				Section:     step.Section,
				Tags:        step.Tags,
			},
		})
		if err != nil {
			a.log.Warn("retrieval step failed", "collection", step.Collection, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", step.Collection, text))
	}

	system := a.synthesisPrompt(strings.Join(blocks, "\n\n"))
	messages := append([]llm.ChatMessage{{Role: llm.RoleSystem, Content: system}}, history...)

	answer, err := a.model.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

// plan asks the model for a structured retrieval plan.
func (a *Assistant) plan(ctx context.Context, userQuery string) (RetrievalPlan, error) {
	prompt := fmt.Sprintf(`You are a retrieval planner for a personal knowledge base with two collections:

- "projects": software projects. Documents are project descriptions (content_type "description") and README chunks (content_type "readme"), tagged with technologies (e.g. "python", "go", "react").
- "resume": professional background, split into sections "Work Experience", "Education" and "Skills".

User question: %s

Plan at most %d searches that together cover the question. Prefer no content_type filter for broad project questions; use content_type "readme" only when technical detail is needed. Use tags when the question names technologies. Use section filters for work history, education or skills questions.

Respond with JSON: {"searches": [{"collection": "...", "query": "...", "content_type": "...", "section": "...", "tags": ["..."]}], "reasoning": "..."}`,
		userQuery, a.stepBudget)

	var plan RetrievalPlan
	err := a.model.CompleteStructured(ctx, []llm.ChatMessage{{Role: llm.RoleSystem, Content: prompt}}, &plan)
	if err != nil {
		return RetrievalPlan{}, err
	}
	if len(plan.Searches) == 0 {
		return RetrievalPlan{}, fmt.Errorf("empty retrieval plan")
	}
	return plan, nil
}

// fallbackPlan derives one search per collection from query keywords when
// planning fails.
func fallbackPlan(userQuery string) RetrievalPlan {
	inferred := retrieval.InferFilter(userQuery)
	return RetrievalPlan{
		Searches: []SearchStep{
			{Collection: CollectionProjects, Query: userQuery, ContentType: inferred.ContentType, Tags: inferred.Tags},
			{Collection: CollectionResume, Query: userQuery, Section: inferred.Section},
		},
		Reasoning: "planning failed, searching both collections with inferred filters",
	}
}

// validSteps drops steps referencing unknown collections or empty queries.
func validSteps(steps []SearchStep) []SearchStep {
	var out []SearchStep
	for _, s := range steps {
		if s.Collection != CollectionProjects && s.Collection != CollectionResume {
			continue
		}
		if strings.TrimSpace(s.Query) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (a *Assistant) synthesisPrompt(context string) string {
	if strings.TrimSpace(context) == "" {
		context = "No matching documents found."
	}
	return fmt.Sprintf(`You are a helpful assistant answering questions about a person's projects and professional background.

Today's date is %s.

Context from the knowledge base:
%s

Instructions:
- Answer based on the context above
- If the context doesn't contain the answer, say so instead of guessing
- Use markdown formatting for readability`,
		a.now().Format("January 2, 2006"), context)
}

func latestUserMessage(messages []llm.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
