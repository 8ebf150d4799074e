package ai

import (
	"context"
	"fmt"
	"strings"
)

// ProviderKind names a supported LLM backend.
type ProviderKind string

const (
	ProviderGemini ProviderKind = "GEMINI"
	ProviderOpenAI ProviderKind = "OPENAI"
)

// Provider sends one rendered prompt to an LLM backend and returns its raw text.
// Implementations report failures as *Error.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
	Model() string
}

// ParseProvider resolves the configured provider name. An empty value selects Gemini.
func ParseProvider(name string) (ProviderKind, error) {
	switch ProviderKind(strings.ToUpper(strings.TrimSpace(name))) {
	case "", ProviderGemini:
		return ProviderGemini, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("unsupported ai provider: %q (expected GEMINI or OPENAI)", name)
	}
}
