package llm

import "strings"

// SystemInstruction frames every provider call. Suggestions are short
// reflective nudges, returned as strict JSON so the response can be gated on
// confidence.
const SystemInstruction = `You are a gentle writing companion. Given one sentence the user just wrote, offer at most one short reflective nudge (a question or observation, under 20 words) that helps them go deeper. Reply with strict JSON: {"suggestion_text": string, "confidence": number between 0 and 1}. If nothing worth saying, return an empty suggestion_text with low confidence.`

// PromptBuilder renders a SuggestionRequest into the user-turn prompt shared
// by all provider backends.
type PromptBuilder struct {
	req *SuggestionRequest
}

func NewPromptBuilder(req *SuggestionRequest) *PromptBuilder {
	return &PromptBuilder{req: req}
}

func (b *PromptBuilder) Build() string {
	var prompt strings.Builder

	b.writeSentence(&prompt)
	b.writeDocumentContext(&prompt)
	b.writeTopic(&prompt)
	b.writeAvoidList(&prompt)

	return prompt.String()
}

func (b *PromptBuilder) writeSentence(prompt *strings.Builder) {
	prompt.WriteString("<sentence>\n")
	prompt.WriteString(b.req.SentenceText)
	prompt.WriteString("\n</sentence>\n")
}

func (b *PromptBuilder) writeDocumentContext(prompt *strings.Builder) {
	if b.req.DocumentContext == "" {
		return
	}
	prompt.WriteString("\n<document_so_far>\n")
	prompt.WriteString(b.req.DocumentContext)
	prompt.WriteString("\n</document_so_far>\n")
}

func (b *PromptBuilder) writeTopic(prompt *strings.Builder) {
	if len(b.req.TopicKeywords) == 0 {
		return
	}
	prompt.WriteString("\n<current_topic>\n")
	prompt.WriteString(strings.Join(b.req.TopicKeywords, ", "))
	prompt.WriteString("\n</current_topic>\n")
}

func (b *PromptBuilder) writeAvoidList(prompt *strings.Builder) {
	if len(b.req.RecentSuggestions) == 0 {
		return
	}
	prompt.WriteString("\n<already_suggested>\n")
	for _, s := range b.req.RecentSuggestions {
		prompt.WriteString("- ")
		prompt.WriteString(s)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</already_suggested>\n")
	prompt.WriteString("\nDo not repeat or rephrase anything already suggested.")
}
