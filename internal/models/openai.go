// Package models adapts OpenAI-compatible chat completion APIs to the ADK model interface.
package models

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// compatModel talks to any chat completion endpoint that speaks the OpenAI protocol.
type compatModel struct {
	client   *openai.Client
	name     string
	provider string
}

func newCompatModel(provider, baseURL, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	ua := fmt.Sprintf("companion-house/%s go/%s", provider, strings.TrimPrefix(runtime.Version(), "go"))
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithHeader("User-Agent", ua),
	)

	return &compatModel{
		client:   &client,
		name:     modelName,
		provider: provider,
	}, nil
}

func (m *compatModel) Name() string {
	return m.name
}

// GenerateContent always answers with a single complete response; stream is ignored.
func (m *compatModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		resp, err := m.generate(ctx, req)
		yield(resp, err)
	}
}

func (m *compatModel) generate(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}
	ensureUserTurn(req)
	params := buildOpenAIParams(req, m.name)

	resp, err := m.client.Chat.Completions.New(ctx, *params)
	if err != nil {
		slog.Error("failed to call llm API", "provider", m.provider, "model", params.Model, "error", err.Error())
		return nil, fmt.Errorf("failed to call %s API: %w", m.provider, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return &model.LLMResponse{TurnComplete: true}, nil
	}

	choice := resp.Choices[0]
	content := &genai.Content{Role: "model"}
	if choice.Message.Content != "" {
		content.Parts = append(content.Parts, &genai.Part{Text: choice.Message.Content})
	}
	if choice.FinishReason == "content_filter" {
		slog.Warn("llm response filtered", "provider", m.provider, "model", params.Model)
	}

	return &model.LLMResponse{
		Content:      content,
		TurnComplete: true,
	}, nil
}

// ensureUserTurn makes sure the conversation ends with a user message, which some
// providers require.
func ensureUserTurn(req *model.LLMRequest) {
	if len(req.Contents) == 0 {
		req.Contents = append(req.Contents, genai.NewContentFromText("Handle the requests as specified in the System Instruction.", "user"))
		return
	}
	if last := req.Contents[len(req.Contents)-1]; last != nil && last.Role != "user" {
		req.Contents = append(req.Contents, genai.NewContentFromText("Continue processing previous requests as instructed.", "user"))
	}
}
