package factory

import (
	"fmt"

	"ai-writing-be/pkg/llm"
	"ai-writing-be/pkg/llm/gemini"
	"ai-writing-be/pkg/llm/ollama"
)

func NewSuggestionProvider(providerType, modelName, baseURL, apiKey string) (llm.SuggestionProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an api key")
		}
		return gemini.NewGeminiProvider(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported suggestion provider: %s", providerType)
	}
}
