// Package openai talks to an OpenAI compatible /chat/completions endpoint in JSON mode.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-rater/internal/ai"
)

const (
	providerName   = "openai"
	DefaultModel   = "gpt-4o"
	DefaultBaseURL = "https://api.openai.com/v1"

	systemMessage = "You are a precise recruiting assistant. Respond with a single JSON object."
)

// Provider calls the chat completions endpoint with response_format json_object.
type Provider struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Options configure a Provider. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	// Timeout bounds a whole request. Zero leaves cancellation to the context.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewProvider creates a provider targeting the OpenAI API.
func NewProvider(opts Options, logger *zap.Logger) (*Provider, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
		if opts.Timeout > 0 {
			client.Timeout = opts.Timeout
		}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: client,
		logger:     logger,
	}, nil
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message struct {
		Content *string `json:"content"`
		Refusal string  `json:"refusal,omitempty"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Generate sends prompt and returns the content of the first choice.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", ai.NewError(ai.KindTransport, providerName, "", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ai.NewError(ai.KindTransport, providerName, "read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.Debug("openai returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBytes),
		)
		return "", ai.NewError(ai.KindTransport, providerName, fmt.Sprintf("HTTP %d", resp.StatusCode), errorFromBody(respBytes))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return "", ai.NewError(ai.KindTransport, providerName, "decode response", err)
	}

	if chatResp.Error != nil {
		return "", ai.NewError(ai.KindTransport, providerName, chatResp.Error.Type, errors.New(chatResp.Error.Message))
	}

	if len(chatResp.Choices) == 0 {
		return "", ai.NewError(ai.KindEmptyResponse, providerName, "no choices", nil)
	}

	choice := chatResp.Choices[0]
	if choice.Message.Refusal != "" || choice.FinishReason == "content_filter" {
		reason := choice.Message.Refusal
		if reason == "" {
			reason = choice.FinishReason
		}
		return "", ai.NewError(ai.KindBlocked, providerName, reason, nil)
	}

	if choice.Message.Content == nil || strings.TrimSpace(*choice.Message.Content) == "" {
		return "", ai.NewError(ai.KindEmptyResponse, providerName, "empty message content", nil)
	}

	return *choice.Message.Content, nil
}

func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) Model() string {
	return p.model
}

func errorFromBody(body []byte) error {
	var payload chatResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != nil && payload.Error.Message != "" {
		return errors.New(payload.Error.Message)
	}

	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	if text == "" {
		return nil
	}
	return errors.New(text)
}
