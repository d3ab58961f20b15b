package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundhog-ai/groundhog/internal/store"
)

type fakeVectors struct {
	upserts map[string][]store.Document
	deleted []string
}

func (v *fakeVectors) Upsert(_ context.Context, collection string, docs []store.Document) (int, error) {
	if v.upserts == nil {
		v.upserts = map[string][]store.Document{}
	}
	v.upserts[collection] = append(v.upserts[collection], docs...)
	return len(docs), nil
}

func (v *fakeVectors) Delete(_ context.Context, collection string) error {
	v.deleted = append(v.deleted, collection)
	return nil
}

const portfolioHTML = `<html><body>
<h1>Richard</h1>
<h2>Work Experience</h2>
<div>Software engineer at Acme Corp, 2020-2024.</div>
<p>Built data pipelines.</p>
<h2>Education</h2>
<div>BSc Computer Science, University of Colorado Boulder.</div>
<h3>Skills</h3>
<ul><li>Go</li><li>Python</li></ul>
<h2>Contact</h2>
<p>email@example.com</p>
</body></html>`

func TestExtractResumeSections(t *testing.T) {
	docs, err := extractResumeSections(portfolioHTML, "https://example.dev/")
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "Work Experience", docs[0].Metadata.Section)
	assert.Contains(t, docs[0].Content, "Acme Corp")
	assert.Contains(t, docs[0].Content, "data pipelines")

	assert.Equal(t, "Education", docs[1].Metadata.Section)
	assert.Contains(t, docs[1].Content, "University of Colorado Boulder")

	assert.Equal(t, "Skills", docs[2].Metadata.Section)
	assert.Contains(t, docs[2].Content, "Go")
}

func TestExtractResumeSectionsIgnoresUnknownHeaders(t *testing.T) {
	docs, err := extractResumeSections(portfolioHTML, "src")
	require.NoError(t, err)
	for _, d := range docs {
		assert.NotEqual(t, "Contact", d.Metadata.Section)
	}
}

func TestDescriptionDocument(t *testing.T) {
	p := Project{
		Title:       "knowhow",
		Description: "Knowledge base CLI",
		Tags:        []string{"go", "surrealdb"},
		Link:        "https://example.dev/knowhow",
		Repo:        "someone/knowhow",
	}
	doc := descriptionDocument(p, "https://example.dev/projects.json")

	assert.Contains(t, doc.Content, "Title: knowhow")
	assert.Contains(t, doc.Content, "Technologies: go, surrealdb")
	assert.Contains(t, doc.Content, "Repository: someone/knowhow")
	assert.Equal(t, "description", doc.Metadata.ContentType)
	assert.Equal(t, []string{"go", "surrealdb"}, doc.Metadata.Tags)
	assert.Equal(t, "knowhow", doc.Metadata.Title)
}

func TestReadmeDocumentsCarryProjectContext(t *testing.T) {
	p := Project{Title: "knowhow", Repo: "someone/knowhow", Tags: []string{"go"}}
	readme := strings.Repeat("A paragraph about the project.\n\n", 200)

	docs, err := readmeDocuments(p, readme, "src")
	require.NoError(t, err)
	require.Greater(t, len(docs), 1)

	for i, d := range docs {
		assert.Equal(t, "readme", d.Metadata.ContentType)
		assert.Equal(t, i, d.Metadata.ChunkIndex)
		assert.Contains(t, d.Content, "Title: knowhow")
		assert.Contains(t, d.Content, "Repository: someone/knowhow")
	}
	assert.Contains(t, docs[0].Metadata.Section, "README Part 1")
}

func TestFetchGitHubReadmeFallsBackToMaster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/someone/repo/master/README.md" {
			_, _ = w.Write([]byte("# Readme from master"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	content, err := fetchGitHubReadme(context.Background(), srv.Client(), srv.URL, "someone/repo")
	require.NoError(t, err)
	assert.Equal(t, "# Readme from master", content)
}

func TestFetchGitHubReadmeMissing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	content, err := fetchGitHubReadme(context.Background(), srv.Client(), srv.URL, "someone/empty")
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestIngestRunRebuildsBothCollections(t *testing.T) {
	projects := []Project{
		{Title: "alpha", Description: "first project", Tags: []string{"go"}, Repo: "someone/alpha"},
		{Title: "beta", Description: "second project"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/projects.json", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(projects)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(portfolioHTML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	vectors := &fakeVectors{}
	in := New(vectors, Config{
		ProjectsURL:  srv.URL + "/projects.json",
		PortfolioURL: srv.URL + "/",
	}, nil).WithHTTPClient(srv.Client()).WithReadmeFetcher(
		func(_ context.Context, repo string) (string, error) {
			if repo == "someone/alpha" {
				return "# Alpha\n\nDetailed readme.", nil
			}
			return "", nil
		})

	stats, err := in.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Projects)
	assert.Equal(t, 3, stats.ResumeSections)
	assert.ElementsMatch(t, []string{"projects", "resume"}, vectors.deleted)

	projDocs := vectors.upserts["projects"]
	require.NotEmpty(t, projDocs)
	var descriptions, readmes int
	for _, d := range projDocs {
		switch d.Metadata.ContentType {
		case "description":
			descriptions++
		case "readme":
			readmes++
		}
	}
	assert.Equal(t, 2, descriptions)
	assert.Equal(t, 1, readmes)

	require.Len(t, vectors.upserts["resume"], 3)
}
