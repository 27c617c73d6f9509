package llm

import (
	"context"
	"fmt"
)

// Config mirrors internal/config.LLMConfig's shape so this package does not
// need to import internal/config directly; callers pass the fields through.
type Config struct {
	ActiveProvider string
	Agents         map[string]AgentOverride
}

// AgentOverride lets one tool type pin a specific provider by name.
type AgentOverride struct {
	Provider string
}

// Manager resolves a Provider for a tool invocation, honoring a per-tool
// override before falling back to the deployment's active provider.
type Manager struct {
	config    Config
	providers map[string]Provider
}

// NewManager registers every provider this deployment knows about.
// gemini-legacy is the secondary SDK path (generative-ai-go) kept alongside
// the primary genai-backed GeminiProvider for tools whose metadata pins it
// explicitly; openai remains an unconfigured named slot (see provider.go).
func NewManager(cfg Config) *Manager {
	return &Manager{
		config: cfg,
		providers: map[string]Provider{
			"openai":        &OpenAIProvider{},
			"gemini":        &GeminiProvider{},
			"gemini-legacy": &LegacyGeminiProvider{},
			"deepseek":      &DeepSeekProvider{},
			"qwen":          &QwenProvider{},
		},
	}
}

// GetProvider resolves the provider for a tool/agent type: a per-type
// override first, then the deployment's active provider, then gemini as the
// final fallback.
func (m *Manager) GetProvider(agentType string) Provider {
	if override, ok := m.config.Agents[agentType]; ok && override.Provider != "" {
		if p, ok := m.providers[override.Provider]; ok {
			return p
		}
	}

	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}

	return m.providers["gemini"]
}

// GetProviderByName retrieves a provider instance by its registered name.
func (m *Manager) GetProviderByName(name string) (Provider, bool) {
	p, ok := m.providers[name]
	return p, ok
}

// ExecutePrompt adapts the system prompt to the resolved provider's house
// style and generates a response for the given tool/agent type.
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(agentType)
	if provider == nil {
		return "", fmt.Errorf("no provider resolved for agent type %q", agentType)
	}

	adaptedSystemPrompt := provider.AdaptInstructions(rawSystemPrompt)
	return provider.GenerateResponse(ctx, rawPrompt, adaptedSystemPrompt, options)
}

// SetGlobalProvider changes the deployment's default provider at runtime.
func (m *Manager) SetGlobalProvider(newProvider string) error {
	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	return nil
}

// ActiveProvider returns the deployment's current default provider name.
func (m *Manager) ActiveProvider() string {
	return m.config.ActiveProvider
}
