package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  QueryFilter
	}{
		{
			name:  "technology and content type",
			query: "show me the python project readme",
			want:  QueryFilter{Tags: []string{"python"}, ContentType: "readme"},
		},
		{
			name:  "work section wins over skills",
			query: "what skills did you use at your last job",
			want:  QueryFilter{Section: "Work Experience"},
		},
		{
			name:  "education section",
			query: "where did you study, which university",
			want:  QueryFilter{Section: "Education"},
		},
		{
			name:  "skills section",
			query: "list your technical skills",
			want:  QueryFilter{Section: "Skills"},
		},
		{
			name:  "multiple technologies",
			query: "projects using react and typescript",
			want:  QueryFilter{Tags: []string{"typescript", "react"}},
		},
		{
			name:  "word boundary prevents false tag match",
			query: "tell me about the category of algorithms",
			want:  QueryFilter{},
		},
		{
			name:  "go matched as whole word only",
			query: "any projects written in go",
			want:  QueryFilter{Tags: []string{"go"}},
		},
		{
			name:  "description content type",
			query: "give me a brief summary of the projects",
			want:  QueryFilter{ContentType: "description"},
		},
		{
			name:  "no keywords",
			query: "tell me something interesting",
			want:  QueryFilter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferFilter(tt.query)
			assert.Equal(t, tt.want.Section, got.Section)
			assert.Equal(t, tt.want.ContentType, got.ContentType)
			assert.ElementsMatch(t, tt.want.Tags, got.Tags)
		})
	}
}

func TestInferFilterCaseInsensitive(t *testing.T) {
	f := InferFilter("Python README for the Docker setup")
	assert.ElementsMatch(t, []string{"python", "docker"}, f.Tags)
	assert.Equal(t, "readme", f.ContentType)
}
