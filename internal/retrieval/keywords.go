package retrieval

import "strings"

// techVocabulary is the fixed set of technology terms recognized in query
// text. Matches become tag predicates.
var techVocabulary = []string{
	"python",
	"go",
	"golang",
	"typescript",
	"javascript",
	"react",
	"rust",
	"java",
	"docker",
	"kubernetes",
	"terraform",
	"postgres",
	"postgresql",
	"surrealdb",
	"aws",
	"langchain",
	"fastapi",
	"graphql",
	"sql",
	"machine learning",
	"llm",
}

// sectionVocabulary maps resume section names to the query terms that select
// them. Groups are checked in order and the first group with any match wins.
var sectionVocabulary = []struct {
	section string
	terms   []string
}{
	{"Work Experience", []string{"work", "job", "employment", "experience", "career", "company", "position", "role"}},
	{"Education", []string{"education", "degree", "university", "college", "school", "study", "studied"}},
	{"Skills", []string{"skill", "skills", "technologies", "tech stack", "proficient", "competenc"}},
}

// contentTypeVocabulary maps content types to their selecting query terms.
var contentTypeVocabulary = []struct {
	contentType string
	terms       []string
}{
	{"readme", []string{"readme", "documentation", "technical detail"}},
	{"description", []string{"description", "summary", "overview", "brief"}},
}

// InferFilter derives a query filter by scanning text for known technology
// and section keywords. Matching is case-insensitive substring; for sections
// and content types the first matching group wins. Pure function, so the
// inference stays reproducible.
func InferFilter(text string) QueryFilter {
	lower := strings.ToLower(text)
	var f QueryFilter

	for _, tech := range techVocabulary {
		if containsWord(lower, tech) {
			f.Tags = append(f.Tags, tech)
		}
	}

	for _, group := range sectionVocabulary {
		matched := false
		for _, term := range group.terms {
			if strings.Contains(lower, term) {
				matched = true
				break
			}
		}
		if matched {
			f.Section = group.section
			break
		}
	}

	for _, group := range contentTypeVocabulary {
		matched := false
		for _, term := range group.terms {
			if strings.Contains(lower, term) {
				matched = true
				break
			}
		}
		if matched {
			f.ContentType = group.contentType
			break
		}
	}

	return f
}

// containsWord matches a keyword on word boundaries so short terms like "go"
// do not fire inside unrelated words.
func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
