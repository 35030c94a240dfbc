package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/easeaico/companion-house/internal/prompt"
	"github.com/easeaico/companion-house/internal/types"
	"github.com/easeaico/companion-house/internal/utils"
)

// JSONGenerator asks a model for output matching a JSON schema.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, instruction, prompt string, schema *jsonschema.Schema) (string, error)
}

// Summarizer writes the per-character summary of a finished conversation.
type Summarizer interface {
	Summarize(ctx context.Context, character *types.Character, session *types.ChatSession, previous []string) (types.ConversationSummary, error)
}

type summaryOutput struct {
	Summary             string   `json:"summary" jsonschema:"2-4 sentence summary of the conversation"`
	KeyTopics           []string `json:"key_topics" jsonschema:"main topics that came up"`
	EmotionalTone       string   `json:"emotional_tone" jsonschema:"positive, negative or neutral"`
	RelationshipContext string   `json:"relationship_context" jsonschema:"what the conversation means for the relationship"`
}

// LLMSummarizer summarizes with structured model output.
type LLMSummarizer struct {
	gen    JSONGenerator
	schema *jsonschema.Schema
}

// NewLLMSummarizer returns a summarizer using gen.
func NewLLMSummarizer(gen JSONGenerator) (*LLMSummarizer, error) {
	schema, err := jsonschema.For[summaryOutput](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build summary schema: %w", err)
	}
	schema.Title = "conversation_summary"
	return &LLMSummarizer{gen: gen, schema: schema}, nil
}

func (s *LLMSummarizer) Summarize(ctx context.Context, character *types.Character, session *types.ChatSession, previous []string) (types.ConversationSummary, error) {
	text, err := prompt.BuildRelationshipSummary(prompt.RelationshipSummaryInput{
		Character:         character,
		Session:           session,
		PreviousSummaries: previous,
	})
	if err != nil {
		return types.ConversationSummary{}, err
	}

	raw, err := s.gen.GenerateJSON(ctx, prompt.RelationshipSummaryInstruction(), text, s.schema)
	if err != nil {
		return types.ConversationSummary{}, fmt.Errorf("failed to generate summary: %w", err)
	}

	var out summaryOutput
	if err := utils.ParseJSONObject(raw, &out); err != nil {
		return types.ConversationSummary{}, err
	}
	out.Summary = strings.TrimSpace(out.Summary)
	if out.Summary == "" {
		return types.ConversationSummary{}, fmt.Errorf("empty summary")
	}

	return types.ConversationSummary{
		SessionID:           session.ID,
		CharacterID:         character.ID,
		Summary:             out.Summary,
		KeyTopics:           out.KeyTopics,
		EmotionalTone:       strings.ToLower(strings.TrimSpace(out.EmotionalTone)),
		RelationshipContext: out.RelationshipContext,
		MessageCount:        len(session.Messages),
	}, nil
}
