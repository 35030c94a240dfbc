package models

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

type fakeLLM struct {
	reply   string
	err     error
	lastReq *model.LLMRequest
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	f.lastReq = req
	return func(yield func(*model.LLMResponse, error) bool) {
		if f.err != nil {
			yield(nil, f.err)
			return
		}
		yield(&model.LLMResponse{Content: genai.NewContentFromText(f.reply, "model"), TurnComplete: true}, nil)
	}
}

type summaryShape struct {
	Summary string `json:"summary"`
}

func TestBuildOpenAIParamsSystemAndSchema(t *testing.T) {
	schema, err := jsonschema.For[summaryShape](nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	schema.Title = "conversation_summary"

	req := &model.LLMRequest{
		Contents: []*genai.Content{
			genai.NewContentFromText("hello", "user"),
			genai.NewContentFromText("hi there", "model"),
		},
		Config: &genai.GenerateContentConfig{
			SystemInstruction:  genai.NewContentFromText("be terse", "system"),
			ResponseMIMEType:   "application/json",
			ResponseJsonSchema: schema,
			MaxOutputTokens:    256,
		},
	}
	params := buildOpenAIParams(req, "mistral")

	if params.Model != "mistral" {
		t.Fatalf("unexpected model: %s", params.Model)
	}
	if len(params.Messages) != 3 || params.Messages[0].OfSystem == nil || params.Messages[2].OfAssistant == nil {
		t.Fatalf("unexpected messages: %#v", params.Messages)
	}
	format := params.ResponseFormat.OfJSONSchema
	if format == nil || format.JSONSchema.Name != "conversation_summary" {
		t.Fatalf("expected json schema response format, got %#v", params.ResponseFormat)
	}
	schemaMap, ok := format.JSONSchema.Schema.(map[string]any)
	if !ok || schemaMap["type"] != "object" {
		t.Fatalf("unexpected schema: %#v", format.JSONSchema.Schema)
	}
	if _, ok := schemaMap["$schema"]; ok {
		t.Fatalf("$schema should be stripped")
	}
}

func TestBuildOpenAIParamsJSONObject(t *testing.T) {
	req := &model.LLMRequest{
		Model:  "override",
		Config: &genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	}
	params := buildOpenAIParams(req, "default")
	if params.Model != "override" {
		t.Fatalf("request model should win, got %s", params.Model)
	}
	if params.ResponseFormat.OfJSONObject == nil {
		t.Fatalf("expected json object response format")
	}
}

func TestEnsureUserTurn(t *testing.T) {
	req := &model.LLMRequest{Contents: []*genai.Content{genai.NewContentFromText("hi", "model")}}
	ensureUserTurn(req)
	if len(req.Contents) != 2 || req.Contents[1].Role != "user" {
		t.Fatalf("expected trailing user turn, got %#v", req.Contents)
	}
}

func TestGeneratorGenerateResponse(t *testing.T) {
	llm := &fakeLLM{reply: "  [] "}
	gen := NewGenerator(llm, 0.7, 512)

	got, err := gen.GenerateResponse(context.Background(), "analyze")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "[]" {
		t.Fatalf("unexpected reply: %q", got)
	}
	if llm.lastReq.Config.MaxOutputTokens != 512 || *llm.lastReq.Config.Temperature != 0.7 {
		t.Fatalf("unexpected config: %#v", llm.lastReq.Config)
	}
}

func TestGeneratorGenerateJSONSetsSchema(t *testing.T) {
	llm := &fakeLLM{reply: `{"summary":"ok"}`}
	gen := NewGenerator(llm, 0, 0)
	schema := &jsonschema.Schema{Type: "object"}

	if _, err := gen.GenerateJSON(context.Background(), "summarize", "transcript", schema); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	cfg := llm.lastReq.Config
	if cfg.ResponseJsonSchema != schema || cfg.SystemInstruction == nil || cfg.Temperature != nil {
		t.Fatalf("unexpected config: %#v", cfg)
	}
}

func TestGeneratorErrors(t *testing.T) {
	gen := NewGenerator(&fakeLLM{err: errors.New("rate limited")}, 0, 0)
	if _, err := gen.GenerateResponse(context.Background(), "x"); err == nil {
		t.Fatalf("expected error")
	}
	gen = NewGenerator(&fakeLLM{reply: "   "}, 0, 0)
	if _, err := gen.GenerateResponse(context.Background(), "x"); err == nil {
		t.Fatalf("expected error for empty reply")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), "acme", "m", "key"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	if _, err := New(context.Background(), ProviderVenice, "m", ""); err == nil {
		t.Fatalf("expected error for missing key")
	}
	llm, err := New(context.Background(), ProviderVenice, "venice-uncensored", "key")
	if err != nil || llm.Name() != "venice-uncensored" {
		t.Fatalf("unexpected model: %v %v", llm, err)
	}
}
