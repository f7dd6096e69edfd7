// Package prompt builds the instruction strings for the three backend
// tasks: screenshot text extraction, speaker parsing, and
// miscommunication analysis. All builders are pure functions of their
// inputs.
package prompt

import (
	"fmt"
	"strings"
)

// Extraction returns the instruction for the vision-capable backend.
func Extraction() string {
	return extractionPrompt
}

// ParseSystem returns the system prompt for the speaker-parsing task.
func ParseSystem(language string) string {
	if language == "" || strings.EqualFold(language, "english") {
		return parseSystemPrompt
	}
	return parseSystemPrompt + fmt.Sprintf("\nThe conversation is in %s; keep speaker names and content in the original language.", language)
}

// ParseUser wraps the conversation text for the parsing task.
func ParseUser(conversationText string) string {
	return fmt.Sprintf("Parse this conversation:\n\n%s", conversationText)
}

// AnalysisSystem returns the system prompt for the analysis task.
func AnalysisSystem() string {
	return analysisSystemPrompt
}

// Analysis returns the full analysis instruction for the given depth,
// language, and reasoning level. Unknown knob values fall back to
// "standard".
func Analysis(analysisDepth, language, reasoningLevel string) string {
	reasoning, ok := reasoningInstructions[reasoningLevel]
	if !ok {
		reasoning = reasoningInstructions["standard"]
	}
	depth, ok := depthInstructions[analysisDepth]
	if !ok {
		depth = depthInstructions["standard"]
	}
	if language == "" {
		language = "english"
	}

	return fmt.Sprintf(`%s

%s
%s

For each issue found, categorize it as %s and explain:
- Why it causes confusion
- Different possible interpretations
- Suggested improvements

Analysis depth: %s
Language: %s

%s`,
		analysisBasePrompt, reasoning, depth, severityTaxonomy, analysisDepth, language, analysisSchemaPrompt)
}

// AnalysisUser wraps the conversation text and identified speakers for
// the analysis task.
func AnalysisUser(conversationText string, speakers []string) string {
	if len(speakers) == 0 {
		return fmt.Sprintf("Conversation to analyze:\n\n%s", conversationText)
	}
	return fmt.Sprintf("Conversation to analyze:\n\n%s\n\nSpeakers identified: %s",
		conversationText, strings.Join(speakers, ", "))
}
