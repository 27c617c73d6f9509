package llm

import (
	"context"
	"fmt"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// OpenAIProvider is registered as a named slot in the provider map so tool
// metadata can request "openai" without the registry failing to resolve,
// but no tool in this domain currently declares it — grant-research tools
// are scored against the Gemini providers below.
type OpenAIProvider struct{}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	return "", fmt.Errorf("openai provider not configured for this deployment")
}

func (p *OpenAIProvider) AdaptInstructions(raw string) string {
	return raw
}
