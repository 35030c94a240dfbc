package prompt

import "text/template"

const memoryAnalysisTemplateText = `Analyze this conversation between {{.CharacterName}} and the user and extract the most important memories {{.CharacterName}} should keep.

Character: {{.CharacterName}}
{{- if .Personality}}
Personality: {{.Personality}}
{{- end}}

Conversation:
{{.Transcript}}

Extract 2-4 memories. Use these categories:
- PERSONAL: facts the user shared about themselves
- RELATIONSHIP: how the relationship between {{.CharacterName}} and the user changed
- SEXUAL: intimate moments or preferences
- PREFERENCES: likes, dislikes and boundaries of the user
- EVENTS: things that happened together

Rate each memory's importance as LOW, MEDIUM or HIGH.

Respond with a JSON array only, no other text:
[{"category": "PERSONAL", "importance": "HIGH", "description": "..."}]`

const relationshipSummaryInstruction = `You summarize conversations between an AI companion and the user for the companion's long term memory.
Write from the companion's point of view in third person, in chronological order.
Return a valid JSON object that matches the output schema and nothing else.`

const relationshipSummaryTemplateText = `Character: {{.CharacterName}}
Relationship status: {{.Status}}
Affection {{.Affection}}/100, trust {{.Trust}}/100, intimacy {{.Intimacy}}/100

{{- if .PreviousSummaries}}

Earlier conversations:
{{- range .PreviousSummaries}}
- {{.}}
{{- end}}
{{- end}}

Conversation ({{.MessageCount}} messages):
{{.Transcript}}

Summarize the conversation in 2-4 sentences, list the key topics, classify the emotional tone as positive, negative or neutral, and describe what the conversation means for the relationship.`

var (
	memoryAnalysisTemplate      = template.Must(template.New("memory_analysis").Parse(memoryAnalysisTemplateText))
	relationshipSummaryTemplate = template.Must(template.New("relationship_summary").Parse(relationshipSummaryTemplateText))
)

// RelationshipSummaryInstruction is the system instruction paired with BuildRelationshipSummary.
func RelationshipSummaryInstruction() string {
	return relationshipSummaryInstruction
}
