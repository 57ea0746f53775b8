package openai

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const scorerPromptTemplate = `Rate how relevant the passage is to the query on a scale of 0 to 100.
Respond with only the number.

Query: %s

Passage:
%s`

// Scorer grades (query, passage) pairs with a cross-encoder style prompt
// against an OpenAI-compatible chat backend.
type Scorer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// ScorerConfig holds the relevance scorer settings.
type ScorerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewScorer creates a pairwise relevance scorer.
func NewScorer(cfg *ScorerConfig) *Scorer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Scorer{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Score returns a relevance grade in [0,1] for the pair.
func (s *Scorer) Score(ctx context.Context, query, passageText string) (float64, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   8,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(scorerPromptTemplate, query, passageText),
			},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("score pair: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("empty scorer response")
	}

	return parseGrade(resp.Choices[0].Message.Content)
}

// parseGrade extracts the leading number from the model output and
// normalizes it to [0,1].
func parseGrade(raw string) (float64, error) {
	text := strings.TrimSpace(raw)
	end := 0
	for end < len(text) && (text[end] == '.' || (text[end] >= '0' && text[end] <= '9')) {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("no numeric grade in %q", raw)
	}

	grade, err := strconv.ParseFloat(text[:end], 64)
	if err != nil {
		return 0, fmt.Errorf("parse grade %q: %w", text[:end], err)
	}

	if grade < 0 {
		grade = 0
	}
	if grade > 100 {
		grade = 100
	}
	return grade / 100, nil
}
