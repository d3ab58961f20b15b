// Package llm provides completion and embedding capabilities using langchaingo.
package llm

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/groundhog-ai/groundhog/internal/config"
	"github.com/groundhog-ai/groundhog/internal/metrics"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single conversation turn.
type ChatMessage struct {
	Role    Role
	Content string
}

// Model wraps a langchaingo LLM for chat completion.
type Model struct {
	llm       llms.Model
	modelName string
	stats     *metrics.Collector
}

// NewModel creates a completion model based on configuration.
func NewModel(ctx context.Context, cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx)
		if awsErr != nil {
			return nil, fmt.Errorf("load aws config: %w", awsErr)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		model, err = bedrock.New(
			bedrock.WithClient(client),
			bedrock.WithModel(cfg.BedrockModelID),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
	}, nil
}

// WithMetrics attaches a metrics collector recording call timings.
func (m *Model) WithMetrics(c *metrics.Collector) *Model {
	m.stats = c
	return m
}

// Model returns the completion model name.
func (m *Model) Model() string {
	return m.modelName
}

// Complete generates a response for the given messages.
func (m *Model) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	start := time.Now()
	defer m.record(metrics.OpLLMGenerate, start)

	response, err := m.llm.GenerateContent(ctx, toContent(messages))
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("complete: no response choices")
	}
	return response.Choices[0].Content, nil
}

// CompleteStream generates a response, invoking onToken for each chunk as it
// arrives. The full response is returned once generation finishes.
func (m *Model) CompleteStream(ctx context.Context, messages []ChatMessage, onToken func(token string) error) (string, error) {
	start := time.Now()
	defer m.record(metrics.OpLLMStream, start)

	response, err := m.llm.GenerateContent(ctx, toContent(messages),
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			return onToken(string(chunk))
		}),
	)
	if err != nil {
		return "", fmt.Errorf("complete stream: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("complete stream: no response choices")
	}
	return response.Choices[0].Content, nil
}

func (m *Model) record(op string, start time.Time) {
	if m.stats != nil {
		m.stats.RecordTiming(op, time.Since(start))
	}
}

func toContent(messages []ChatMessage) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		var role llms.ChatMessageType
		switch msg.Role {
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		out = append(out, llms.TextParts(role, msg.Content))
	}
	return out
}
