// Package backend dispatches prompt tasks to the configured LLM
// providers behind a uniform request/response contract.
package backend

import "context"

// Task identifies which pipeline stage a request belongs to.
type Task string

const (
	TaskExtract Task = "extract"
	TaskParse   Task = "parse"
	TaskAnalyze Task = "analyze"
)

// Model identifiers accepted over the API.
const (
	ModelGPT4o     = "gpt-4o"
	ModelGPT4oMini = "gpt-4o-mini"
	ModelClaude    = "claude-3-5-sonnet"

	// DefaultModel is used when a conversation doesn't request one.
	DefaultModel = ModelGPT4oMini
)

// Request is a single backend invocation. ImageURL is only set for
// TaskExtract and forces the vision-capable provider regardless of the
// requested model.
type Request struct {
	Task        Task
	Model       string
	System      string
	Prompt      string
	ImageURL    string
	MaxTokens   int
	Temperature float32
	JSONMode    bool
}

// Client is a single provider. Implementations return the raw response
// text; JSON decoding happens at the orchestration boundary.
type Client interface {
	Invoke(ctx context.Context, req Request) (string, error)
}
