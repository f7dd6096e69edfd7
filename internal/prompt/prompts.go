package prompt

// Literal taxonomy embedded in every analysis prompt so the backend's
// structured response can be parsed without ambiguity.
const (
	severityTaxonomy = "critical|moderate|minor"
	categoryTaxonomy = "assumption_gap|ambiguous_language|tone_mismatch|implicit_meaning|other"
)

const extractionPrompt = `Extract and return only the conversation text from this screenshot. Focus on conversation messages, chat bubbles, or any text communication. Preserve the original formatting and speaker names. If there are timestamps, include them. Return only the conversation text, no additional commentary.`

const parseSystemPrompt = `You are a conversation parser. Parse the provided conversation text and identify speakers and their messages. Return JSON in this exact format:
{
  "speakers": ["Speaker1", "Speaker2"],
  "messages": [
    {
      "speaker": "Speaker1",
      "content": "message content",
      "timestamp": "optional timestamp",
      "lineNumber": 1
    }
  ]
}

lineNumber must reflect the chronological position of each message, starting at 1.
If no clear speaker format is found, try to infer speakers from context or use "Speaker 1", "Speaker 2" etc.
Return ONLY the JSON object, no markdown fences or other text.`

const analysisSystemPrompt = `You are an expert communication analyst specializing in identifying miscommunications and improving clarity. Always respond with valid JSON.`

const analysisBasePrompt = `Analyze the following conversation to identify potential miscommunications, focusing on:

1. Assumption gaps - when speakers assume shared understanding
2. Ambiguous language - words/phrases that could be interpreted differently
3. Tone mismatches - defensive or unclear emotional responses
4. Implicit meanings - unstated assumptions or expectations`

const analysisSchemaPrompt = `Return JSON in this exact format:
{
  "issues": [
    {
      "id": "unique_id",
      "severity": "` + severityTaxonomy + `",
      "category": "` + categoryTaxonomy + `",
      "title": "Brief title",
      "description": "Detailed description",
      "highlightedText": "exact text causing issue",
      "lineNumbers": [1, 2],
      "whyConfusing": ["reason 1", "reason 2"],
      "suggestedImprovement": "better phrasing",
      "confidence": 0.95,
      "speakerInterpretations": [
        {
          "speaker": "Speaker1",
          "interpretation": "what they likely meant"
        }
      ]
    }
  ],
  "summary": {
    "criticalIssues": 0,
    "moderateIssues": 0,
    "minorIssues": 0,
    "suggestions": 0,
    "mainCategories": ["category1", "category2"],
    "keyInsights": ["insight1"],
    "recommendations": ["recommendation1"],
    "communicationPatterns": ["pattern1"]
  },
  "clarityScore": 85
}

clarityScore is an integer from 0 to 100.
Return ONLY the JSON object, no markdown fences or other text.`

// Reasoning level changes instruction verbosity only, never the output
// schema.
var reasoningInstructions = map[string]string{
	"standard": `Identify the clearest miscommunication issues and explain each briefly.`,
	"deep":     `Provide in-depth analysis with context and actionable recommendations. Include detailed explanations for each issue and specific suggestions for improvement.`,
	"context":  `Provide deep semantic analysis with psychological insights. Analyze linguistic patterns, interpersonal dynamics, cultural context, implicit meanings, and provide comprehensive recommendations for improving communication effectiveness.`,
}

var depthInstructions = map[string]string{
	"standard": `Focus on the most significant issues.`,
	"deep":     `Perform semantic analysis of word choices, connotations, and implied meanings.`,
	"context":  `Include contextual analysis, cultural considerations, and relationship dynamics.`,
}
