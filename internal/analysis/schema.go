package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonschema"

	"github.com/claritylabs/claritycheck/internal/models"
)

// JSON Schema for the analyze-stage payload. Nothing is required,
// since absent fields default to empty collections at assembly, but
// any field that is present must match the documented contract instead
// of flowing into the persisted record untyped. The severity and
// category enums are built from the canonical constants so the schema
// cannot drift from the taxonomy the rest of the system uses.
var analysisPayloadSchema = fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "issues": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["severity", "category", "description"],
        "properties": {
          "id": {"type": "string"},
          "severity": {"enum": [%s]},
          "category": {"enum": [%s]},
          "title": {"type": "string"},
          "description": {"type": "string"},
          "highlightedText": {"type": "string"},
          "lineNumbers": {"type": "array", "items": {"type": "integer"}},
          "whyConfusing": {"type": "array", "items": {"type": "string"}},
          "suggestedImprovement": {"type": "string"},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1},
          "speakerInterpretations": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "speaker": {"type": "string"},
                "interpretation": {"type": "string"}
              }
            }
          }
        }
      }
    },
    "summary": {
      "type": "object",
      "properties": {
        "criticalIssues": {"type": "integer", "minimum": 0},
        "moderateIssues": {"type": "integer", "minimum": 0},
        "minorIssues": {"type": "integer", "minimum": 0},
        "suggestions": {"type": "integer", "minimum": 0},
        "mainCategories": {"type": "array", "items": {"type": "string"}},
        "keyInsights": {"type": "array", "items": {"type": "string"}},
        "recommendations": {"type": "array", "items": {"type": "string"}},
        "communicationPatterns": {"type": "array", "items": {"type": "string"}}
      }
    },
    "clarityScore": {"type": "number", "minimum": 0, "maximum": 100}
  }
}`,
	quotedList(models.SeverityCritical, models.SeverityModerate, models.SeverityMinor),
	quotedList(models.CategoryAssumptionGap, models.CategoryAmbiguousLanguage,
		models.CategoryToneMismatch, models.CategoryImplicitMeaning, models.CategoryOther),
)

func quotedList(values ...string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Quote(v)
	}
	return strings.Join(parts, ", ")
}

func compileAnalysisSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile([]byte(analysisPayloadSchema))
	if err != nil {
		return nil, fmt.Errorf("compile analysis schema: %w", err)
	}
	return schema, nil
}

func validateAgainst(schema *jsonschema.Schema, payload map[string]any) error {
	result := schema.Validate(payload)
	if result.IsValid() {
		return nil
	}
	var details []string
	for field, evalErr := range result.Errors {
		details = append(details, fmt.Sprintf("%s: %s", field, evalErr.Error()))
	}
	return fmt.Errorf("payload shape: %s", strings.Join(details, "; "))
}
