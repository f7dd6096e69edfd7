package speaker

import (
	"reflect"
	"testing"

	"github.com/claritylabs/claritycheck/internal/models"
)

func msg(speaker, content string, line int) models.Message {
	return models.Message{Speaker: speaker, Content: content, LineNumber: line}
}

func TestNormalizeNamedAndGeneric(t *testing.T) {
	raw := []string{"Jane Doe", "Speaker 1"}
	messages := []models.Message{
		msg("Jane Doe", "hey, are we still on?", 1),
		msg("Speaker 1", "yeah I think so", 2),
		msg("Jane Doe", "great", 3),
	}

	speakers, out := Normalize(raw, messages)

	if want := []string{"Speaker-A", "Speaker-B"}; !reflect.DeepEqual(speakers, want) {
		t.Fatalf("speakers = %v, want %v", speakers, want)
	}
	if out[0].Speaker != "Speaker-A" || out[1].Speaker != "Speaker-B" || out[2].Speaker != "Speaker-A" {
		t.Errorf("unexpected speaker assignment: %+v", out)
	}
}

func TestNormalizeNamedFirstRegardlessOfOrder(t *testing.T) {
	// Generic label listed before the named one: the named speaker must
	// still get Speaker-A.
	raw := []string{"Speaker 1", "Jane Doe"}
	messages := []models.Message{
		msg("Speaker 1", "hi", 1),
		msg("Jane Doe", "hello", 2),
	}

	speakers, out := Normalize(raw, messages)

	if want := []string{"Speaker-A", "Speaker-B"}; !reflect.DeepEqual(speakers, want) {
		t.Fatalf("speakers = %v, want %v", speakers, want)
	}
	if out[0].Speaker != "Speaker-B" {
		t.Errorf("generic speaker should map to Speaker-B, got %q", out[0].Speaker)
	}
	if out[1].Speaker != "Speaker-A" {
		t.Errorf("named speaker should map to Speaker-A, got %q", out[1].Speaker)
	}
}

func TestNormalizeMergesGenericVariants(t *testing.T) {
	raw := []string{"Mike Chen", "You", "Speaker 2", "unnamed"}
	messages := []models.Message{
		msg("You", "did you see my message", 1),
		msg("Mike Chen", "just now, sorry", 2),
		msg("Speaker 2", "no worries", 3),
		msg("unnamed", "ok", 4),
	}

	speakers, out := Normalize(raw, messages)

	if want := []string{"Speaker-A", "Speaker-B"}; !reflect.DeepEqual(speakers, want) {
		t.Fatalf("all generic variants should merge into one label, got %v", speakers)
	}
	for _, m := range out {
		if m.Speaker != "Speaker-A" && m.Speaker != "Speaker-B" {
			t.Errorf("unmapped speaker %q", m.Speaker)
		}
	}
	if out[0].Speaker != "Speaker-B" || out[2].Speaker != "Speaker-B" || out[3].Speaker != "Speaker-B" {
		t.Errorf("generic variants did not share a label: %+v", out)
	}
}

func TestNormalizeRestoresChronologicalOrder(t *testing.T) {
	raw := []string{"Ana Ruiz", "Ben Ito"}
	// Model returned messages out of order.
	messages := []models.Message{
		msg("Ben Ito", "third", 4),
		msg("Ana Ruiz", "first", 1),
		msg("Ben Ito", "second", 2),
	}

	_, out := Normalize(raw, messages)

	wantContent := []string{"first", "second", "third"}
	for i, m := range out {
		if m.Content != wantContent[i] {
			t.Errorf("position %d: got %q, want %q", i, m.Content, wantContent[i])
		}
		if m.LineNumber != i+1 {
			t.Errorf("position %d: lineNumber = %d, want %d", i, m.LineNumber, i+1)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := []string{"Jane Doe", "You"}
	messages := []models.Message{
		msg("You", "hi", 1),
		msg("Jane Doe", "hello", 2),
	}

	speakers1, out1 := Normalize(raw, messages)
	speakers2, out2 := Normalize(speakers1, out1)

	if !reflect.DeepEqual(speakers1, speakers2) {
		t.Errorf("speakers changed on second pass: %v vs %v", speakers1, speakers2)
	}
	if !reflect.DeepEqual(out1, out2) {
		t.Errorf("messages changed on second pass:\n first: %+v\nsecond: %+v", out1, out2)
	}
}

func TestNormalizeSpeakersFromMessagesNotRawList(t *testing.T) {
	// A raw label with no surviving messages must not appear in the
	// returned speakers set.
	raw := []string{"Jane Doe", "Ghost Label"}
	messages := []models.Message{
		msg("Jane Doe", "talking to myself", 1),
	}

	speakers, _ := Normalize(raw, messages)
	if want := []string{"Speaker-A"}; !reflect.DeepEqual(speakers, want) {
		t.Errorf("speakers = %v, want %v", speakers, want)
	}
}

func TestIsGeneric(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"You", true},
		{"you", true},
		{"Speaker 1", true},
		{"speaker-2", true},
		{"speaker", true},
		{"unnamed", true},
		{"Unknown", true},
		{"Jane Doe", false},
		{"Jane", false},
		{"Speaker-A", false}, // canonical labels must not re-trigger
		{"Speaker-AA", false},
	}
	for _, tt := range tests {
		if got := isGeneric(tt.label); got != tt.want {
			t.Errorf("isGeneric(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestRenumber(t *testing.T) {
	messages := []models.Message{
		msg("Speaker-A", "a", 3),
		msg("Speaker-B", "b", 7),
	}
	out := Renumber(messages)
	if out[0].LineNumber != 1 || out[1].LineNumber != 2 {
		t.Errorf("Renumber = %+v", out)
	}
	if messages[0].LineNumber != 3 {
		t.Errorf("Renumber mutated its input")
	}
}
