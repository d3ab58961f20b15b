package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/groundhog-ai/groundhog/internal/store"
)

// Project is one entry of the portfolio's projects.json.
type Project struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Link        string   `json:"link"`
	Repo        string   `json:"repo"`
	Demo        string   `json:"demo"`
}

// README chunking parameters. Larger than web-search chunks because READMEs
// are long-form prose with headings worth keeping together.
const (
	readmeChunkSize    = 1700
	readmeChunkOverlap = 300
)

// fetchProjects downloads and decodes the projects.json feed.
func fetchProjects(ctx context.Context, client *http.Client, url string) ([]Project, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch projects: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch projects: status %d", resp.StatusCode)
	}

	var projects []Project
	if err := json.NewDecoder(resp.Body).Decode(&projects); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return projects, nil
}

// descriptionDocument builds the project's summary document.
func descriptionDocument(p Project, source string) store.Document {
	parts := []string{
		"Title: " + p.Title,
		"Description: " + p.Description,
	}
	if len(p.Tags) > 0 {
		parts = append(parts, "Technologies: "+strings.Join(p.Tags, ", "))
	}
	if p.Link != "" {
		parts = append(parts, "Link: "+p.Link)
	}
	if p.Repo != "" {
		parts = append(parts, "Repository: "+p.Repo)
	}
	if p.Demo != "" {
		parts = append(parts, "Demo: "+p.Demo)
	}

	return store.Document{
		Content: strings.Join(parts, "\n"),
		Metadata: store.Metadata{
			Source:      source,
			URL:         p.Link,
			Title:       p.Title,
			Section:     p.Title,
			ContentType: "description",
			Tags:        p.Tags,
		},
	}
}

// readmeDocuments splits a README into chunks, each suffixed with the
// project's identity so a chunk retrieved alone still names its project.
func readmeDocuments(p Project, readme, source string) ([]store.Document, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(readmeChunkSize),
		textsplitter.WithChunkOverlap(readmeChunkOverlap),
	)
	chunks, err := splitter.SplitText(readme)
	if err != nil {
		return nil, fmt.Errorf("split readme for %s: %w", p.Title, err)
	}

	docs := make([]store.Document, 0, len(chunks))
	for i, chunk := range chunks {
		parts := []string{chunk, "", "Title: " + p.Title}
		if p.Repo != "" {
			parts = append(parts, "Repository: "+p.Repo)
		}
		if p.Link != "" {
			parts = append(parts, "Link: "+p.Link)
		}
		if p.Demo != "" {
			parts = append(parts, "Demo: "+p.Demo)
		}

		docs = append(docs, store.Document{
			Content: strings.Join(parts, "\n"),
			Metadata: store.Metadata{
				Source:      source,
				URL:         p.Link,
				Title:       p.Title,
				Section:     fmt.Sprintf("%s - README Part %d", p.Title, i+1),
				ContentType: "readme",
				Tags:        p.Tags,
				ChunkIndex:  i,
			},
		})
	}
	return docs, nil
}
