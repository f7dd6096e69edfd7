// Package sanitize strips PII-shaped substrings from conversation text
// before it is sent to a model backend. Matching is best-effort regex,
// a mitigation rather than a guarantee.
package sanitize

import "regexp"

var (
	reEmail = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	reURL   = regexp.MustCompile(`(?:https?://|www\.)[^\s<>"]+`)
	// 16 digits, optionally grouped in fours by spaces or dashes.
	reCard = regexp.MustCompile(`\b(?:\d{4}[ -]?){3}\d{4}\b`)
	reSSN  = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	// 7+ digit runs with common phone punctuation, optional country code.
	rePhone = regexp.MustCompile(`(?:\+?\d{1,3}[ .-]?)?(?:\(\d{3}\)[ .-]?|\d{3}[ .-])\d{3}[ .-]?\d{4}\b`)
)

// Clean replaces recognizable PII with fixed placeholder tokens.
// Idempotent: placeholders contain no digits or @ signs, so a second
// pass matches nothing.
func Clean(text string) string {
	// Email before URL so addresses inside links don't get split, and
	// card/SSN before phone so the looser phone pattern can't claim
	// their digit runs first.
	text = reEmail.ReplaceAllString(text, "[EMAIL_ADDRESS]")
	text = reURL.ReplaceAllString(text, "[URL]")
	text = reCard.ReplaceAllString(text, "[CARD_NUMBER]")
	text = reSSN.ReplaceAllString(text, "[SSN]")
	text = rePhone.ReplaceAllString(text, "[PHONE_NUMBER]")
	return text
}
