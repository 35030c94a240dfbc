package models

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go/v3"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// buildOpenAIParams converts an ADK request to chat completion parameters.
func buildOpenAIParams(req *model.LLMRequest, modelName string) *openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: req.Model,
	}
	if req.Model == "" {
		params.Model = modelName
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.Config != nil && req.Config.SystemInstruction != nil {
		if text := contentText(req.Config.SystemInstruction); text != "" {
			messages = append(messages, openai.SystemMessage(text))
		}
	}
	messages = append(messages, convertContentsToMessages(req.Contents)...)
	params.Messages = messages

	if req.Config == nil {
		return &params
	}
	if req.Config.Temperature != nil {
		params.Temperature = openai.Float(float64(*req.Config.Temperature))
	}
	if req.Config.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.Config.MaxOutputTokens))
	}
	if req.Config.TopP != nil {
		params.TopP = openai.Float(float64(*req.Config.TopP))
	}

	if format, ok := responseFormat(req.Config); ok {
		params.ResponseFormat = format
	}
	return &params
}

// responseFormat maps the genai structured output settings to an OpenAI response format.
// A JSON schema wins over a bare JSON mime type.
func responseFormat(cfg *genai.GenerateContentConfig) (openai.ChatCompletionNewParamsResponseFormatUnion, bool) {
	if schema, ok := cfg.ResponseJsonSchema.(*jsonschema.Schema); ok && schema != nil {
		name := schema.Title
		if name == "" {
			name = "response"
		}
		return openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Schema: schemaToMap(schema),
				},
			},
		}, true
	}
	if cfg.ResponseMIMEType == "application/json" {
		return openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}, true
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{}, false
}

// schemaToMap renders a jsonschema.Schema as a plain JSON object, dropping the $schema
// marker that several providers reject.
func schemaToMap(schema *jsonschema.Schema) map[string]any {
	raw, err := json.Marshal(schema)
	if err != nil {
		slog.Error("failed to marshal response schema", "error", err.Error())
		return map[string]any{"type": "object"}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		slog.Error("failed to decode response schema", "error", err.Error())
		return map[string]any{"type": "object"}
	}
	delete(out, "$schema")
	return out
}

// convertContentsToMessages converts genai contents to chat messages. Non-text parts are dropped.
func convertContentsToMessages(contents []*genai.Content) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, content := range contents {
		if content == nil {
			continue
		}
		text := contentText(content)
		switch content.Role {
		case "model", "assistant":
			messages = append(messages, openai.AssistantMessage(text))
		case "system":
			messages = append(messages, openai.SystemMessage(text))
		default:
			messages = append(messages, openai.UserMessage(text))
		}
	}
	return messages
}

func contentText(content *genai.Content) string {
	if content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
