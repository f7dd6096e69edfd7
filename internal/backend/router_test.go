package backend

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

type fakeClient struct {
	lastReq Request
	calls   int
	text    string
	err     error
}

func (f *fakeClient) Invoke(_ context.Context, req Request) (string, error) {
	f.lastReq = req
	f.calls++
	return f.text, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouterDispatch(t *testing.T) {
	tests := []struct {
		model       string
		wantOpenAI  bool
		wantClaude  bool
		wantModelID string
	}{
		{ModelGPT4o, true, false, ModelGPT4o},
		{ModelGPT4oMini, true, false, ModelGPT4oMini},
		{ModelClaude, false, true, ModelClaude},
		{"", true, false, DefaultModel},
		{"some-future-model", true, false, DefaultModel},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			oa := &fakeClient{text: "ok"}
			cl := &fakeClient{text: "ok"}
			r := NewRouter(oa, cl, testLogger())

			_, err := r.Invoke(context.Background(), Request{Task: TaskAnalyze, Model: tt.model, Prompt: "p"})
			if err != nil {
				t.Fatalf("Invoke: %v", err)
			}
			if (oa.calls == 1) != tt.wantOpenAI || (cl.calls == 1) != tt.wantClaude {
				t.Errorf("dispatch mismatch: openai=%d claude=%d", oa.calls, cl.calls)
			}
			got := oa.lastReq.Model
			if tt.wantClaude {
				got = cl.lastReq.Model
			}
			if got != tt.wantModelID {
				t.Errorf("model = %q, want %q", got, tt.wantModelID)
			}
		})
	}
}

func TestRouterForcesVisionTier(t *testing.T) {
	oa := &fakeClient{text: "extracted"}
	cl := &fakeClient{text: "x"}
	r := NewRouter(oa, cl, testLogger())

	// Image attached with the anthropic tier requested: must land on
	// the vision-capable OpenAI tier.
	_, err := r.Invoke(context.Background(), Request{
		Task:     TaskExtract,
		Model:    ModelClaude,
		Prompt:   "extract",
		ImageURL: "data:image/png;base64,xxxx",
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if cl.calls != 0 {
		t.Error("image request must not reach the anthropic tier")
	}
	if oa.calls != 1 || oa.lastReq.Model != ModelGPT4o {
		t.Errorf("image request should use %s, got %q (calls=%d)", ModelGPT4o, oa.lastReq.Model, oa.calls)
	}
}

func TestRouterClaudeUnconfigured(t *testing.T) {
	oa := &fakeClient{text: "x"}
	r := NewRouter(oa, nil, testLogger())
	if _, err := r.Invoke(context.Background(), Request{Model: ModelClaude, Prompt: "p"}); err == nil {
		t.Error("expected error when anthropic tier is not configured")
	}
}
