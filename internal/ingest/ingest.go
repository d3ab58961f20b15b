// Package ingest builds the static personal knowledge base: project
// descriptions and READMEs into the "projects" collection, portfolio resume
// sections into the "resume" collection.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/groundhog-ai/groundhog/internal/store"
)

// VectorStore is the storage surface ingestion needs.
type VectorStore interface {
	Upsert(ctx context.Context, collection string, docs []store.Document) (int, error)
	Delete(ctx context.Context, collection string) error
}

// Config points ingestion at its sources.
type Config struct {
	// ProjectsURL serves the projects.json feed.
	ProjectsURL string
	// PortfolioURL serves the portfolio page with resume sections.
	PortfolioURL string
}

// Stats summarizes one ingestion run.
type Stats struct {
	Projects       int
	ProjectChunks  int
	ResumeSections int
	ResumeChunks   int
}

// Ingester populates the static knowledge base collections.
type Ingester struct {
	vectors VectorStore
	client  *http.Client
	readme  ReadmeFetcher
	cfg     Config
	log     *slog.Logger
}

// New creates an ingester. A nil client gets a default with a 30s timeout.
func New(vectors VectorStore, cfg Config, log *slog.Logger) *Ingester {
	if log == nil {
		log = slog.Default()
	}
	client := &http.Client{Timeout: 30 * time.Second}
	return &Ingester{
		vectors: vectors,
		client:  client,
		readme:  GitHubReadmeFetcher(client),
		cfg:     cfg,
		log:     log,
	}
}

// WithHTTPClient overrides the HTTP client and README fetcher transport.
func (in *Ingester) WithHTTPClient(client *http.Client) *Ingester {
	in.client = client
	in.readme = GitHubReadmeFetcher(client)
	return in
}

// WithReadmeFetcher overrides README resolution. Testing only.
func (in *Ingester) WithReadmeFetcher(fn ReadmeFetcher) *Ingester {
	in.readme = fn
	return in
}

// Run rebuilds both collections. Each collection is wiped and repopulated;
// a failure in one source aborts that collection but not the other.
func (in *Ingester) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	projErr := in.IngestProjects(ctx, &stats)
	if projErr != nil {
		in.log.Error("projects ingestion failed", "error", projErr)
	}

	resumeErr := in.IngestResume(ctx, &stats)
	if resumeErr != nil {
		in.log.Error("resume ingestion failed", "error", resumeErr)
	}

	if projErr != nil {
		return stats, projErr
	}
	return stats, resumeErr
}

// IngestProjects rebuilds the "projects" collection from projects.json and
// the referenced GitHub READMEs. A missing README skips that project's
// README documents, not the run.
func (in *Ingester) IngestProjects(ctx context.Context, stats *Stats) error {
	if in.cfg.ProjectsURL == "" {
		return fmt.Errorf("projects URL not configured")
	}

	projects, err := fetchProjects(ctx, in.client, in.cfg.ProjectsURL)
	if err != nil {
		return err
	}
	in.log.Info("fetched projects feed", "projects", len(projects))

	var docs []store.Document
	for _, p := range projects {
		docs = append(docs, descriptionDocument(p, in.cfg.ProjectsURL))

		if p.Repo == "" {
			continue
		}
		readme, err := in.readme(ctx, p.Repo)
		if err != nil {
			in.log.Warn("readme fetch failed", "repo", p.Repo, "error", err)
			continue
		}
		if readme == "" {
			in.log.Info("no readme found", "repo", p.Repo)
			continue
		}
		chunks, err := readmeDocuments(p, readme, in.cfg.ProjectsURL)
		if err != nil {
			in.log.Warn("readme chunking failed", "repo", p.Repo, "error", err)
			continue
		}
		docs = append(docs, chunks...)
	}

	if err := in.vectors.Delete(ctx, "projects"); err != nil {
		return fmt.Errorf("reset projects collection: %w", err)
	}
	stored, err := in.vectors.Upsert(ctx, "projects", docs)
	if err != nil {
		return fmt.Errorf("store projects: %w", err)
	}

	stats.Projects = len(projects)
	stats.ProjectChunks = stored
	in.log.Info("projects collection rebuilt", "chunks", stored)
	return nil
}

// IngestResume rebuilds the "resume" collection from the portfolio page.
func (in *Ingester) IngestResume(ctx context.Context, stats *Stats) error {
	if in.cfg.PortfolioURL == "" {
		return fmt.Errorf("portfolio URL not configured")
	}

	html, ok, err := fetchText(ctx, in.client, in.cfg.PortfolioURL)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("fetch portfolio: non-200 response from %s", in.cfg.PortfolioURL)
	}

	docs, err := extractResumeSections(html, in.cfg.PortfolioURL)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no resume sections found at %s", in.cfg.PortfolioURL)
	}

	if err := in.vectors.Delete(ctx, "resume"); err != nil {
		return fmt.Errorf("reset resume collection: %w", err)
	}
	stored, err := in.vectors.Upsert(ctx, "resume", docs)
	if err != nil {
		return fmt.Errorf("store resume: %w", err)
	}

	stats.ResumeSections = len(docs)
	stats.ResumeChunks = stored
	in.log.Info("resume collection rebuilt", "sections", len(docs))
	return nil
}
