package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/groundhog-ai/groundhog/internal/metrics"
)

// CompleteStructured generates a JSON response constrained by instructions and
// unmarshals it into out. The caller describes the expected fields in the
// prompt; the model is asked for a single JSON object and nothing else.
//
// A parse or provider failure returns an error so callers can apply their own
// fallback policy; partial output is never written to out on failure.
func (m *Model) CompleteStructured(ctx context.Context, messages []ChatMessage, out any) error {
	start := time.Now()
	defer m.record(metrics.OpLLMStructured, start)

	content := toContent(messages)
	content = append(content, llms.TextParts(llms.ChatMessageTypeSystem,
		"Respond with a single JSON object only. No prose, no code fences."))

	response, err := m.llm.GenerateContent(ctx, content, llms.WithJSONMode())
	if err != nil {
		return fmt.Errorf("structured complete: %w", err)
	}
	if len(response.Choices) == 0 {
		return fmt.Errorf("structured complete: no response choices")
	}

	raw := extractJSON(response.Choices[0].Content)
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("structured complete: parse response: %w", err)
	}
	return nil
}

// extractJSON strips code fences and surrounding prose from a model response,
// returning the outermost JSON object. Models occasionally wrap JSON output
// despite instructions.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
