package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const anthropicAPIURL = "https://api.anthropic.com/v1/messages"

// anthropicAPIModel is the concrete Anthropic model behind the
// claude-3-5-sonnet identifier.
const anthropicAPIModel = "claude-3-5-sonnet-20241022"

// AnthropicClient talks to the Anthropic Messages API directly.
type AnthropicClient struct {
	apiKey string
	client *http.Client
	apiURL string
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		apiKey: apiKey,
		client: &http.Client{Timeout: 120 * time.Second},
		apiURL: anthropicAPIURL,
	}
}

// SetTestTransport points the client at a test server.
func (c *AnthropicClient) SetTestTransport(url string) {
	c.apiURL = url
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke sends a text prompt and returns the raw response text. The
// Anthropic tier is never used for image extraction; vision requests
// are routed to the OpenAI client before they reach here.
func (c *AnthropicClient) Invoke(ctx context.Context, req Request) (string, error) {
	if req.ImageURL != "" {
		return "", fmt.Errorf("anthropic tier does not accept image input")
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	reqBody := anthropicRequest{
		Model:       anthropicAPIModel,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp anthropicErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Type != "" {
			return "", Classify("anthropic", resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return "", Classify("anthropic", resp.StatusCode, "", string(respBody))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(apiResp.Content) == 0 || apiResp.Content[0].Text == "" {
		return "", fmt.Errorf("anthropic %s: %w", req.Task, ErrEmptyResponse)
	}

	text := apiResp.Content[0].Text
	if looksLikeRefusal(text) {
		return "", fmt.Errorf("anthropic refusal: %w", ErrContentPolicy)
	}
	return text, nil
}
