package quizgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hearthside/homeschool-hub/internal/apperr"
)

// Внешний текст-генератор потребляется как непрозрачный контракт:
// prompt → свободный текст, в котором ожидается один JSON-объект.
const (
	anthropicBaseURL = "https://api.anthropic.com"
	apiVersion       = "2023-06-01"
	maxTokens        = 8192
	temperature      = 0.7
)

type TokenUsage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

type AnthropicClient struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTPC   *http.Client
}

func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: anthropicBaseURL,
		HTTPC:   &http.Client{Timeout: 100 * time.Second},
	}
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete отправляет один user-prompt и возвращает сырой текст ответа.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, TokenUsage, error) {
	if c.APIKey == "" {
		return "", TokenUsage{}, apperr.New(apperr.FailedPrecondition,
			"API key configuration error. Please contact administrator.")
	}

	body, err := json.Marshal(messagesRequest{
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", TokenUsage{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", TokenUsage{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.HTTPC.Do(req)
	if err != nil {
		return "", TokenUsage{}, apperr.Wrap(apperr.Unavailable, "generation API unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", TokenUsage{}, err
	}

	var out messagesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", TokenUsage{}, apperr.Wrap(apperr.Internal, "bad generation API response", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", TokenUsage{}, apperr.New(apperr.FailedPrecondition,
			"API key configuration error. Please contact administrator.")
	case resp.StatusCode != http.StatusOK:
		msg := fmt.Sprintf("generation API status %d", resp.StatusCode)
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", TokenUsage{}, apperr.New(apperr.Internal, msg)
	}

	if len(out.Content) == 0 {
		return "", TokenUsage{}, apperr.New(apperr.Internal, "generation API returned empty content")
	}
	usage := TokenUsage{InputTokens: out.Usage.InputTokens, OutputTokens: out.Usage.OutputTokens}
	return out.Content[0].Text, usage, nil
}
