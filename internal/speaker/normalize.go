// Package speaker reconciles raw speaker labels extracted from text or
// screenshots into canonical Speaker-A/Speaker-B labels and restores
// chronological message order.
package speaker

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/claritylabs/claritycheck/internal/models"
)

// Screenshot parses often yield one visible name and one implicit party
// ("You", "Speaker 1", ...). These are the generic forms we fold into a
// single canonical label. Canonical Speaker-A/B labels deliberately do
// not match: the letter suffix fails the digit-only pattern, which is
// what makes Normalize idempotent.
var genericLabel = regexp.MustCompile(`^(?:speaker[ _-]*\d*|you|me|unnamed|unknown|user\d*|person\d*)$`)

// isGeneric reports whether a label is one of the generic forms. A
// multi-word label ("Jane Doe") never matches; "Speaker 1" does.
func isGeneric(label string) bool {
	return genericLabel.MatchString(strings.ToLower(strings.TrimSpace(label)))
}

// canonical returns the label for the i-th canonical slot: Speaker-A,
// Speaker-B, ... Speaker-Z, Speaker-AA, ...
func canonical(i int) string {
	letter := string(rune('A' + i%26))
	return fmt.Sprintf("Speaker-%s", strings.Repeat(letter, 1+i/26))
}

// Normalize rewrites speaker labels through a canonical mapping and
// re-sorts messages chronologically.
//
// Named labels are assigned Speaker-A, Speaker-B, ... in first-seen
// order (raw list first, then any labels appearing only in messages).
// All generic variants collapse into one extra label after the named
// ones. Messages are stable-sorted by their original lineNumber and
// renumbered 1..N; the returned speakers set is recomputed from the
// rewritten messages and sorted lexically.
func Normalize(rawSpeakers []string, messages []models.Message) ([]string, []models.Message) {
	// First-seen order across the raw list and message stream.
	var order []string
	seen := make(map[string]bool)
	note := func(label string) {
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		order = append(order, label)
	}
	for _, s := range rawSpeakers {
		note(s)
	}
	for _, m := range messages {
		note(m.Speaker)
	}

	mapping := make(map[string]string, len(order))
	next := 0
	hasGeneric := false
	for _, label := range order {
		if isGeneric(label) {
			hasGeneric = true
			continue
		}
		mapping[label] = canonical(next)
		next++
	}
	if hasGeneric {
		merged := canonical(next)
		for _, label := range order {
			if isGeneric(label) {
				mapping[label] = merged
			}
		}
	}

	out := make([]models.Message, len(messages))
	copy(out, messages)
	for i := range out {
		if c, ok := mapping[out[i].Speaker]; ok {
			out[i].Speaker = c
		}
	}

	// Stable sort restores chronology even if the model reordered
	// messages upstream.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LineNumber < out[j].LineNumber
	})
	for i := range out {
		out[i].LineNumber = i + 1
	}

	distinct := make(map[string]bool)
	var speakers []string
	for _, m := range out {
		if m.Speaker != "" && !distinct[m.Speaker] {
			distinct[m.Speaker] = true
			speakers = append(speakers, m.Speaker)
		}
	}
	sort.Strings(speakers)
	return speakers, out
}

// Renumber rewrites lineNumbers to the 1-based display order after a
// user edit (insert/delete/reorder).
func Renumber(messages []models.Message) []models.Message {
	out := make([]models.Message, len(messages))
	copy(out, messages)
	for i := range out {
		out[i].LineNumber = i + 1
	}
	return out
}
