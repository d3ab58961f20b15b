package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"needs_search": true}`,
			want:  `{"needs_search": true}`,
		},
		{
			name:  "surrounding whitespace",
			input: "\n  {\"a\": 1}  \n",
			want:  `{"a": 1}`,
		},
		{
			name:  "json code fence",
			input: "```json\n{\"optimized_query\": \"go release\"}\n```",
			want:  `{"optimized_query": "go release"}`,
		},
		{
			name:  "plain code fence",
			input: "```\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "prose around object",
			input: "Here is the result:\n{\"a\": {\"b\": 2}}\nHope that helps!",
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "no object at all",
			input: "sorry, I cannot do that",
			want:  "sorry, I cannot do that",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.input))
		})
	}
}

func TestExtractJSONRoundTrip(t *testing.T) {
	raw := "```json\n{\"needs_web_search\": false, \"reasoning\": \"static fact\"}\n```"

	var decision struct {
		NeedsWebSearch bool   `json:"needs_web_search"`
		Reasoning      string `json:"reasoning"`
	}
	require.NoError(t, json.Unmarshal([]byte(extractJSON(raw)), &decision))
	assert.False(t, decision.NeedsWebSearch)
	assert.Equal(t, "static fact", decision.Reasoning)
}
