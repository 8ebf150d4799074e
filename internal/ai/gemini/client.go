package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/resume-rater/internal/ai"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.5-pro"
)

// contentGenerator is the subset of *genai.Models used by Generator.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator sends prompts to the Gemini API.
type Generator struct {
	models    contentGenerator
	modelName string
	logger    *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, model, logger), nil
}

func newGenerator(models contentGenerator, model string, logger *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{models: models, modelName: model, logger: logger}
}

// Generate sends the prompt to Gemini and returns the concatenated text parts of the answer.
// Safety blocks are reported before an empty answer.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", transportError(err)
	}
	if resp == nil {
		return "", ai.NewError(ai.KindEmptyResponse, providerName, "no response", nil)
	}

	if reason := blockReason(resp); reason != "" {
		g.logger.Warn("gemini response blocked", zap.String("reason", reason))
		return "", ai.NewError(ai.KindBlocked, providerName, reason, nil)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			builder.WriteString(part.Text)
		}
		// Only the first candidate with content is used.
		if builder.Len() > 0 {
			break
		}
	}

	output := builder.String()
	if strings.TrimSpace(output) == "" {
		return "", ai.NewError(ai.KindEmptyResponse, providerName, "no text parts", nil)
	}

	return output, nil
}

func (g *Generator) Name() string {
	return providerName
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

func blockReason(resp *genai.GenerateContentResponse) string {
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		reason := string(fb.BlockReason)
		if msg := strings.TrimSpace(fb.BlockReasonMessage); msg != "" {
			reason += " (" + msg + ")"
		}
		return reason
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		switch candidate.FinishReason {
		case genai.FinishReasonSafety,
			genai.FinishReasonBlocklist,
			genai.FinishReasonProhibitedContent,
			genai.FinishReasonSPII:
			if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
				return string(candidate.FinishReason)
			}
		}
	}

	return ""
}

func transportError(err error) error {
	reason := ""
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		reason = fmt.Sprintf("%d %s", apiErr.Code, apiErr.Status)
	}
	return ai.NewError(ai.KindTransport, providerName, reason, err)
}
