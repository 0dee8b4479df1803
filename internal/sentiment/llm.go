package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ticker-bot/internal/api"
	"ticker-bot/internal/interfaces"
)

const (
	openAIURL = "https://api.openai.com/v1/chat/completions"
	claudeURL = "https://api.anthropic.com/v1/messages"

	systemPrompt = "You are a financial news analyst. Rate the sentiment of a stock market headline. Respond ONLY with valid JSON."
)

// LLMConfig selects the model used to score headlines.
type LLMConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
	// Endpoint overrides the provider URL.
	Endpoint string
}

// OpenAI scores headlines with the chat completions API.
type OpenAI struct {
	client *api.Client
	apiKey string
	cfg    LLMConfig
}

var _ interfaces.Scorer = (*OpenAI)(nil)

func NewOpenAI(client *api.Client, apiKey string, cfg LLMConfig) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY missing")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = openAIURL
	}
	return &OpenAI{client: client, apiKey: apiKey, cfg: cfg}, nil
}

func (o *OpenAI) Score(ctx context.Context, text string) (float64, error) {
	body := map[string]any{
		"model": o.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildPrompt(text)},
		},
		"temperature": o.cfg.Temperature,
		"max_tokens":  o.cfg.MaxTokens,
	}
	resp, err := o.client.POST(ctx, o.cfg.Endpoint, body, map[string]string{
		"Authorization": "Bearer " + o.apiKey,
	})
	if err != nil {
		return 0, fmt.Errorf("openai: %w", err)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return 0, err
	}
	if len(r.Choices) == 0 {
		return 0, errors.New("openai: no choices")
	}
	return parseScore(r.Choices[0].Message.Content)
}

// Claude scores headlines with the Anthropic messages API.
type Claude struct {
	client *api.Client
	apiKey string
	cfg    LLMConfig
}

var _ interfaces.Scorer = (*Claude)(nil)

func NewClaude(client *api.Client, apiKey string, cfg LLMConfig) (*Claude, error) {
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY missing")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = claudeURL
	}
	return &Claude{client: client, apiKey: apiKey, cfg: cfg}, nil
}

func (c *Claude) Score(ctx context.Context, text string) (float64, error) {
	body := map[string]any{
		"model":       c.cfg.Model,
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": c.cfg.Temperature,
		"system":      systemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": buildPrompt(text)},
		},
	}
	resp, err := c.client.POST(ctx, c.cfg.Endpoint, body, map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	})
	if err != nil {
		return 0, fmt.Errorf("claude: %w", err)
	}

	var r struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return 0, err
	}
	if len(r.Content) == 0 {
		return 0, errors.New("claude: no content")
	}
	return parseScore(r.Content[0].Text)
}

func buildPrompt(headline string) string {
	return fmt.Sprintf(`Headline: %s

Score how positive the headline is for the company's stock, from -1.0 (very negative) to 1.0 (very positive).
Respond ONLY with JSON matching this schema:
{"score": -1.0 to 1.0 (float)}`, headline)
}

// parseScore accepts {"score": x}, optionally inside a code fence, or a bare number.
func parseScore(content string) (float64, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var r struct {
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(content), &r); err == nil && r.Score != nil {
		return clamp(*r.Score), nil
	}
	if v, err := strconv.ParseFloat(content, 64); err == nil {
		return clamp(v), nil
	}
	return 0, fmt.Errorf("invalid score response: %q", content)
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
