package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/resume-rater/internal/logger"
	"github.com/spigell/resume-rater/internal/utils"
)

const defaultMaxLogLength = 200

// Client sends prompts to a single provider and turns the answers into JSON objects.
type Client struct {
	provider  Provider
	logger    *zap.Logger
	maxLogLen int
}

// NewClient wraps provider. The provider is fixed for the lifetime of the client.
func NewClient(provider Provider, log *zap.Logger, maxLogLength int) *Client {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Client{
		provider:  provider,
		logger:    logger.WithCommonFields(log, provider.Name(), provider.Model()),
		maxLogLen: maxLogLength,
	}
}

// Provider returns the name of the underlying provider.
func (c *Client) Provider() string {
	return c.provider.Name()
}

// Call sends prompt once and returns the parsed JSON object.
func (c *Client) Call(ctx context.Context, prompt string) (map[string]any, error) {
	obj, _, err := c.call(ctx, prompt)
	return obj, err
}

// Decode sends prompt once, decodes the JSON object into target and validates it.
// It returns the cleaned response text.
func (c *Client) Decode(ctx context.Context, prompt string, target Schema) (string, error) {
	obj, cleaned, err := c.call(ctx, prompt)
	if err != nil {
		return "", err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       rejectFractions,
	})
	if err != nil {
		return "", fmt.Errorf("create response decoder: %w", err)
	}

	if err := decoder.Decode(obj); err != nil {
		return "", c.malformedResponse(cleaned, err)
	}

	if err := target.Validate(); err != nil {
		return "", c.malformedResponse(cleaned, err)
	}

	return cleaned, nil
}

func (c *Client) call(ctx context.Context, prompt string) (map[string]any, string, error) {
	c.logger.Debug("llm generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	raw, err := c.provider.Generate(ctx, prompt)
	if err != nil {
		return nil, "", err
	}

	c.logger.Debug("llm generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)

	cleaned := strings.TrimSpace(StripCodeFence(raw))
	if cleaned == "" {
		return nil, "", &Error{Kind: KindEmptyResponse, Provider: c.provider.Name(), Raw: raw}
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, "", &Error{Kind: KindMalformedJSON, Provider: c.provider.Name(), Raw: raw, Err: err}
	}
	if obj == nil {
		return nil, "", &Error{Kind: KindMalformedJSON, Provider: c.provider.Name(), Raw: raw, Reason: "response is not a JSON object"}
	}

	return obj, cleaned, nil
}

func (c *Client) malformedResponse(raw string, err error) error {
	c.logger.Warn("llm response does not match the expected schema",
		zap.Error(err),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)
	return &Error{Kind: KindMalformedResponse, Provider: c.provider.Name(), Raw: raw, Err: err}
}

// rejectFractions keeps the decoder from truncating values like 12.5 into integer fields.
func rejectFractions(from, to reflect.Kind, data any) (any, error) {
	if from != reflect.Float64 || to != reflect.Int {
		return data, nil
	}
	if f := data.(float64); f != math.Trunc(f) {
		return nil, fmt.Errorf("expected an integer, got %v", f)
	}
	return data, nil
}
