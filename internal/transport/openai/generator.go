package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/askdex/askdex/internal/domain"
	"github.com/askdex/askdex/internal/metrics"
)

// Generator is the answer-generation backend client. A circuit breaker
// guards the chat-completion endpoint: an open breaker resolves to a
// generation failure, so the caller still returns ranked results.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	breaker     *gobreaker.CircuitBreaker[string]
	logger      *zap.Logger
}

// GeneratorConfig holds the generation backend settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible generation client.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	settings := gobreaker.Settings{
		Name:    "generation",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("backend", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		breaker:     gobreaker.NewCircuitBreaker[string](settings),
		logger:      logger,
	}
}

// Generate runs a single chat completion for the given prompt. No retry
// loop: transient-failure policy belongs to the backend, the engine only
// bounds the call.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.breaker.Execute(func() (string, error) {
		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       g.model,
			MaxTokens:   g.maxTokens,
			Temperature: g.temperature,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("empty completion response")
		}
		return resp.Choices[0].Message.Content, nil
	})

	if err != nil {
		metrics.GenerationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: circuit open", domain.ErrGenerationFailed)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	metrics.GenerationDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	return text, nil
}
