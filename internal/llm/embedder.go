package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/groundhog-ai/groundhog/internal/config"
	"github.com/groundhog-ai/groundhog/internal/metrics"
)

// Embedder wraps langchaingo embeddings with dimension validation.
type Embedder struct {
	model     embeddings.Embedder
	dimension int
	modelName string
	stats     *metrics.Collector
}

// NewEmbedder creates an embedder based on configuration.
func NewEmbedder(cfg config.Config) (*Embedder, error) {
	var model embeddings.Embedder
	var err error

	switch cfg.EmbedProvider {
	case config.ProviderOllama:
		llm, ollamaErr := ollama.New(
			ollama.WithModel(cfg.EmbedModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if ollamaErr != nil {
			return nil, fmt.Errorf("create ollama client: %w", ollamaErr)
		}
		model, err = embeddings.NewEmbedder(llm)
		if err != nil {
			return nil, fmt.Errorf("create ollama embedder: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		llm, openaiErr := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithEmbeddingModel(cfg.EmbedModel),
		)
		if openaiErr != nil {
			return nil, fmt.Errorf("create openai client: %w", openaiErr)
		}
		model, err = embeddings.NewEmbedder(llm)
		if err != nil {
			return nil, fmt.Errorf("create openai embedder: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.EmbedProvider)
	}

	return &Embedder{
		model:     model,
		dimension: cfg.EmbedDimension,
		modelName: cfg.EmbedModel,
	}, nil
}

// WithMetrics attaches a metrics collector recording call timings.
func (e *Embedder) WithMetrics(c *metrics.Collector) *Embedder {
	e.stats = c
	return e
}

// Embed generates an embedding vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	defer e.record(start)

	vec, err := e.model.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if err := e.checkDimension(len(vec)); err != nil {
		return nil, err
	}
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts in one provider call.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	defer e.record(start)

	vecs, err := e.model.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	for _, vec := range vecs {
		if err := e.checkDimension(len(vec)); err != nil {
			return nil, err
		}
	}
	return vecs, nil
}

// Dimension returns the embedding vector dimension. Must match the HNSW index
// dimension in the SurrealDB schema.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.modelName
}

func (e *Embedder) checkDimension(got int) error {
	if e.dimension > 0 && got != e.dimension {
		return fmt.Errorf("embedding dimension mismatch: model %s returned %d, expected %d",
			e.modelName, got, e.dimension)
	}
	return nil
}

func (e *Embedder) record(start time.Time) {
	if e.stats != nil {
		e.stats.RecordTiming(metrics.OpEmbedding, time.Since(start))
	}
}
