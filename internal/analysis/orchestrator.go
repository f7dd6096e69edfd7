// Package analysis sequences the pipeline that turns a submitted
// conversation into a structured miscommunication report:
// sanitize, optional image extraction, parse, normalize, analyze,
// assemble.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonschema"

	"github.com/claritylabs/claritycheck/internal/backend"
	"github.com/claritylabs/claritycheck/internal/models"
	"github.com/claritylabs/claritycheck/internal/prompt"
	"github.com/claritylabs/claritycheck/internal/sanitize"
	"github.com/claritylabs/claritycheck/internal/speaker"
)

// Invoker dispatches a backend request; satisfied by *backend.Router.
type Invoker interface {
	Invoke(ctx context.Context, req backend.Request) (string, error)
}

// Options are the per-conversation analysis knobs.
type Options struct {
	Model          string
	AnalysisDepth  string
	Language       string
	ReasoningLevel string
}

// Result is the assembled output of one pipeline run. Collections are
// never nil so the persisted record carries empty arrays, not nulls.
type Result struct {
	Speakers     []string         `json:"speakers"`
	Messages     []models.Message `json:"messages"`
	Issues       []models.Issue   `json:"issues"`
	Summary      models.Summary   `json:"summary"`
	ClarityScore int              `json:"clarityScore"`
}

// Orchestrator runs the analysis pipeline against injected backend
// clients.
type Orchestrator struct {
	backend Invoker
	schema  *jsonschema.Schema
	logger  *slog.Logger
}

func New(b Invoker, logger *slog.Logger) (*Orchestrator, error) {
	schema, err := compileAnalysisSchema()
	if err != nil {
		return nil, err
	}
	return &Orchestrator{backend: b, schema: schema, logger: logger}, nil
}

// Run executes the full pipeline for a submitted conversation.
func (o *Orchestrator) Run(ctx context.Context, text, imageURL string, opts Options) (*Result, error) {
	conversationText := o.prepareText(ctx, text, imageURL, opts)

	speakers, messages, err := o.parseStage(ctx, conversationText, opts)
	if err != nil {
		return nil, err
	}
	speakers, messages = speaker.Normalize(speakers, messages)

	issues, summary, clarity, err := o.analyzeStage(ctx, conversationText, speakers, opts)
	if err != nil {
		return nil, err
	}

	return assemble(speakers, messages, issues, summary, clarity), nil
}

// Parse runs only the sanitize/extract/parse/normalize stages. Used to
// attach best-effort parse results to conversation creation.
func (o *Orchestrator) Parse(ctx context.Context, text, imageURL string, opts Options) ([]string, []models.Message, error) {
	conversationText := o.prepareText(ctx, text, imageURL, opts)
	speakers, messages, err := o.parseStage(ctx, conversationText, opts)
	if err != nil {
		return nil, nil, err
	}
	speakers, messages = speaker.Normalize(speakers, messages)
	return speakers, messages, nil
}

// Reanalyze re-runs only the analyze stage over user-corrected
// speakers/messages, reconstructing a "speaker: content" text blob.
// No re-extraction or re-parse happens.
func (o *Orchestrator) Reanalyze(ctx context.Context, speakers []string, messages []models.Message, opts Options) (*Result, error) {
	messages = speaker.Renumber(messages)

	var b strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&b, "%s: %s\n", m.Speaker, m.Content)
	}
	conversationText := sanitize.Clean(b.String())

	issues, summary, clarity, err := o.analyzeStage(ctx, conversationText, speakers, opts)
	if err != nil {
		return nil, err
	}
	return assemble(speakers, messages, issues, summary, clarity), nil
}

// prepareText sanitizes the submitted text and, when a screenshot is
// attached, swaps in the extracted text. Extraction failures degrade to
// the submitted text rather than aborting the request.
func (o *Orchestrator) prepareText(ctx context.Context, text, imageURL string, opts Options) string {
	conversationText := sanitize.Clean(text)
	if imageURL == "" {
		return conversationText
	}

	extracted, err := o.backend.Invoke(ctx, backend.Request{
		Task:      backend.TaskExtract,
		Model:     opts.Model,
		Prompt:    prompt.Extraction(),
		ImageURL:  imageURL,
		MaxTokens: 1000,
	})
	if err != nil {
		o.logger.Warn("image extraction failed, falling back to submitted text", "error", err)
		return conversationText
	}
	return sanitize.Clean(extracted)
}

type parsePayload struct {
	Speakers []string         `json:"speakers"`
	Messages []models.Message `json:"messages"`
}

// parseStage identifies speakers and messages. An empty or malformed
// backend response degrades to empty slices; transport, auth, rate, and
// policy errors propagate.
func (o *Orchestrator) parseStage(ctx context.Context, conversationText string, opts Options) ([]string, []models.Message, error) {
	raw, err := o.backend.Invoke(ctx, backend.Request{
		Task:        backend.TaskParse,
		Model:       opts.Model,
		System:      prompt.ParseSystem(opts.Language),
		Prompt:      prompt.ParseUser(conversationText),
		MaxTokens:   2000,
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		if errors.Is(err, backend.ErrEmptyResponse) {
			o.logger.Warn("parse stage returned no text, using empty parse", "error", err)
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("parse stage: %w", err)
	}

	var parsed parsePayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		o.logger.Warn("parse stage returned malformed JSON, using empty parse", "error", err)
		return nil, nil, nil
	}
	return parsed.Speakers, parsed.Messages, nil
}

type analyzePayload struct {
	Issues       []models.Issue `json:"issues"`
	Summary      models.Summary `json:"summary"`
	ClarityScore float64        `json:"clarityScore"`
}

// analyzeStage asks the backend for the miscommunication report and
// validates the payload shape at the boundary. Unlike the parse stage,
// a malformed payload here fails the request.
func (o *Orchestrator) analyzeStage(ctx context.Context, conversationText string, speakers []string, opts Options) ([]models.Issue, models.Summary, int, error) {
	raw, err := o.backend.Invoke(ctx, backend.Request{
		Task:   backend.TaskAnalyze,
		Model:  opts.Model,
		System: prompt.AnalysisSystem(),
		Prompt: prompt.Analysis(opts.AnalysisDepth, opts.Language, opts.ReasoningLevel) +
			"\n\n" + prompt.AnalysisUser(conversationText, speakers),
		MaxTokens:   4000,
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		return nil, models.Summary{}, 0, fmt.Errorf("analyze stage: %w", err)
	}

	payload := stripFences(raw)

	var shape map[string]any
	if err := json.Unmarshal([]byte(payload), &shape); err != nil {
		return nil, models.Summary{}, 0, fmt.Errorf("analyze stage: %v: %w", err, backend.ErrMalformedResponse)
	}
	if err := validateAgainst(o.schema, shape); err != nil {
		return nil, models.Summary{}, 0, fmt.Errorf("analyze stage: %v: %w", err, backend.ErrMalformedResponse)
	}

	var out analyzePayload
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, models.Summary{}, 0, fmt.Errorf("analyze stage: %v: %w", err, backend.ErrMalformedResponse)
	}

	for i := range out.Issues {
		if out.Issues[i].ID == "" {
			out.Issues[i].ID = uuid.NewString()
		}
	}

	clarity := int(math.Round(out.ClarityScore))
	if clarity < 0 {
		clarity = 0
	}
	if clarity > 100 {
		clarity = 100
	}
	return out.Issues, out.Summary, clarity, nil
}

func assemble(speakers []string, messages []models.Message, issues []models.Issue, summary models.Summary, clarity int) *Result {
	if speakers == nil {
		speakers = []string{}
	}
	if messages == nil {
		messages = []models.Message{}
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	if summary.MainCategories == nil {
		summary.MainCategories = []string{}
	}
	return &Result{
		Speakers:     speakers,
		Messages:     messages,
		Issues:       issues,
		Summary:      summary,
		ClarityScore: clarity,
	}
}

// stripFences removes a markdown code fence if the model wrapped its
// JSON in one despite the instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
