package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the backend failure taxonomy. Callers test with
// errors.Is and decide fallback behavior themselves.
var (
	// ErrAuth: invalid or missing provider credential. Fatal until an
	// operator fixes the key.
	ErrAuth = errors.New("backend credential rejected")

	// ErrRateLimit: provider throttling; transient.
	ErrRateLimit = errors.New("backend rate limited")

	// ErrContentPolicy: the provider refused to process the content.
	ErrContentPolicy = errors.New("backend refused content")

	// ErrEmptyResponse: the provider returned no text.
	ErrEmptyResponse = errors.New("backend returned empty response")

	// ErrMalformedResponse: the provider's output was not the JSON we
	// asked for.
	ErrMalformedResponse = errors.New("backend returned malformed response")
)

// Refusal phrasing varies by provider and changes without notice, so
// every matching rule lives here and nowhere else. Replace with a
// structured signal the moment a provider offers one.
var refusalPhrases = []string{
	"i can't assist",
	"i cannot assist",
	"i can't help with",
	"i cannot help with",
	"against my guidelines",
	"content policy",
	"content management policy",
	"unable to process this content",
}

func looksLikeRefusal(message string) bool {
	m := strings.ToLower(message)
	for _, phrase := range refusalPhrases {
		if strings.Contains(m, phrase) {
			return true
		}
	}
	return false
}

// Classify maps a provider HTTP status and error detail onto the
// taxonomy. errType is the provider's own error code when it supplies
// one (e.g. anthropic's "authentication_error", openai's
// "content_policy_violation").
func Classify(provider string, status int, errType, message string) error {
	switch {
	case status == 401 || status == 403 ||
		errType == "authentication_error" || errType == "permission_error":
		return fmt.Errorf("%s auth (%d): %s: %w", provider, status, message, ErrAuth)
	case status == 429 || errType == "rate_limit_error":
		return fmt.Errorf("%s throttled (%d): %s: %w", provider, status, message, ErrRateLimit)
	case errType == "content_policy_violation" || looksLikeRefusal(message):
		return fmt.Errorf("%s policy (%d): %s: %w", provider, status, message, ErrContentPolicy)
	default:
		return fmt.Errorf("%s error (%d): %s: %s", provider, status, errType, message)
	}
}
