package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// Generator turns plain prompts into single-shot model calls.
type Generator struct {
	llm         model.LLM
	temperature float32
	maxTokens   int32
}

// NewGenerator wraps llm. Temperature and token limit apply to every call.
func NewGenerator(llm model.LLM, temperature float32, maxTokens int32) *Generator {
	return &Generator{
		llm:         llm,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// GenerateResponse sends prompt as a single user message and returns the reply text.
func (g *Generator) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText(prompt, "user")},
		Config:   g.config(),
	})
}

// GenerateJSON asks for output conforming to schema and returns the raw reply.
func (g *Generator) GenerateJSON(ctx context.Context, instruction, prompt string, schema *jsonschema.Schema) (string, error) {
	cfg := g.config()
	cfg.ResponseMIMEType = "application/json"
	cfg.ResponseJsonSchema = schema
	if instruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(instruction, "system")
	}
	return g.generate(ctx, &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText(prompt, "user")},
		Config:   cfg,
	})
}

func (g *Generator) config() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if g.temperature > 0 {
		cfg.Temperature = genai.Ptr(g.temperature)
	}
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = g.maxTokens
	}
	return cfg
}

func (g *Generator) generate(ctx context.Context, req *model.LLMRequest) (string, error) {
	if g == nil || g.llm == nil {
		return "", fmt.Errorf("generator not configured")
	}

	var last string
	for resp, err := range g.llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", fmt.Errorf("failed to generate content: %w", err)
		}
		if resp == nil || resp.Content == nil {
			continue
		}
		if text := strings.TrimSpace(contentText(resp.Content)); text != "" {
			last = text
		}
	}
	if last == "" {
		return "", fmt.Errorf("empty model response")
	}
	return last, nil
}
