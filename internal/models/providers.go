package models

import (
	"context"
	"fmt"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderVenice     = "venice"
	ProviderGrok       = "grok"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	veniceBaseURL     = "https://api.venice.ai/api/v1"
	grokBaseURL       = "https://api.x.ai/v1"
)

// NewOpenRouterModel returns a model routed through OpenRouter, e.g. "mistralai/mistral-nemo".
func NewOpenRouterModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	return newCompatModel(ProviderOpenRouter, openRouterBaseURL, modelName, cfg)
}

// NewVeniceModel returns a model served by Venice AI.
func NewVeniceModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	return newCompatModel(ProviderVenice, veniceBaseURL, modelName, cfg)
}

// NewGrokModel returns an x.ai Grok model such as "grok-2-1212".
func NewGrokModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	return newCompatModel(ProviderGrok, grokBaseURL, modelName, cfg)
}

// New picks the adapter for provider.
func New(ctx context.Context, provider, modelName, apiKey string) (model.LLM, error) {
	cfg := &genai.ClientConfig{APIKey: apiKey}
	switch provider {
	case ProviderOpenRouter, "":
		return NewOpenRouterModel(ctx, modelName, cfg)
	case ProviderVenice:
		return NewVeniceModel(ctx, modelName, cfg)
	case ProviderGrok:
		return NewGrokModel(ctx, modelName, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
