package factory

import (
	"fmt"

	"ai-webchat-be/internal/config"
	"ai-webchat-be/pkg/llm"
	"ai-webchat-be/pkg/llm/azureopenai"
	"ai-webchat-be/pkg/llm/ollama"
)

// NewProvider selects the completion backend from configuration.
func NewProvider(cfg config.CompletionConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "azure":
		return azureopenai.NewAzureProvider(
			cfg.Endpoint,
			cfg.APIKey,
			cfg.DeploymentName,
			cfg.APIVersion,
		), nil
	case "ollama":
		return ollama.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unknown completion provider: %q", cfg.Provider)
	}
}
