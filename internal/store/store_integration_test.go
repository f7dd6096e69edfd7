//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/claritylabs/claritycheck/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// seedUserAndConversation creates a throwaway user and conversation and
// registers cleanup in reverse dependency order.
func seedUserAndConversation(t *testing.T, s *Store) (string, models.Conversation) {
	t.Helper()
	ctx := context.Background()
	userID := "integration-test-" + uuid.New().String()[:8]

	if _, err := s.UpsertUser(ctx, userID, userID+"@test.local", "test"); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	conv, err := s.CreateConversation(ctx, models.Conversation{
		UserID:         userID,
		Text:           "John: are we shipping today?\nSarah: probably",
		AnalysisDepth:  "standard",
		Language:       "english",
		AIModel:        "gpt-4o-mini",
		ReasoningLevel: "standard",
	})
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM usage_events WHERE user_id = $1", userID)
		s.pool.Exec(ctx, "DELETE FROM shared_links WHERE created_by = $1", userID)
		s.pool.Exec(ctx, "DELETE FROM analyses WHERE conversation_id = $1", conv.ID)
		s.pool.Exec(ctx, "DELETE FROM conversations WHERE id = $1", conv.ID)
		s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	})
	return userID, conv
}

func TestIntegration_ReplaceAnalysisKeepsSingleRow(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	_, conv := seedUserAndConversation(t, s)

	first, err := s.CreateAnalysis(ctx, models.Analysis{
		ConversationID: conv.ID,
		Speakers:       []string{"Speaker-A", "Speaker-B"},
		Issues: []models.Issue{{
			ID:          uuid.NewString(),
			Severity:    models.SeverityModerate,
			Category:    models.CategoryAmbiguousLanguage,
			Description: "\"probably\" leaves the decision open",
		}},
		Summary:      models.Summary{ModerateIssues: 1, MainCategories: []string{models.CategoryAmbiguousLanguage}},
		ClarityScore: 60,
	})
	if err != nil {
		t.Fatalf("CreateAnalysis failed: %v", err)
	}

	replacement, err := s.ReplaceAnalysis(ctx, models.Analysis{
		ConversationID: conv.ID,
		Speakers:       []string{"Speaker-A", "Speaker-B"},
		Issues:         []models.Issue{},
		Summary:        models.Summary{MainCategories: []string{}},
		ClarityScore:   85,
	})
	if err != nil {
		t.Fatalf("ReplaceAnalysis failed: %v", err)
	}
	if replacement.ID == first.ID {
		t.Error("replacement should get a fresh analysis id")
	}

	// Exactly one row may survive the replace.
	var rows int
	if err := s.pool.QueryRow(ctx,
		"SELECT count(*) FROM analyses WHERE conversation_id = $1", conv.ID,
	).Scan(&rows); err != nil {
		t.Fatalf("count analyses: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 analysis row after replace, got %d", rows)
	}

	got, err := s.GetAnalysisByConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetAnalysisByConversation failed: %v", err)
	}
	if got.ID != replacement.ID || got.ClarityScore != 85 {
		t.Errorf("expected the replacement back, got id=%s clarityScore=%d", got.ID, got.ClarityScore)
	}
	if got.Issues == nil || got.Speakers == nil {
		t.Errorf("collections should round-trip as empty, not nil: %+v", got)
	}
}

func TestIntegration_ShareTokenResolution(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	userID, conv := seedUserAndConversation(t, s)

	a, err := s.CreateAnalysis(ctx, models.Analysis{ConversationID: conv.ID, ClarityScore: 70})
	if err != nil {
		t.Fatalf("CreateAnalysis failed: %v", err)
	}

	link, err := s.CreateShareLink(ctx, conv.ID, a.ID, userID, nil)
	if err != nil {
		t.Fatalf("CreateShareLink failed: %v", err)
	}

	// Each resolve must bump the counter atomically.
	got, err := s.ResolveShareToken(ctx, link.Token)
	if err != nil {
		t.Fatalf("ResolveShareToken failed: %v", err)
	}
	if got.ViewCount != 1 {
		t.Errorf("first resolve view_count = %d, want 1", got.ViewCount)
	}
	got, err = s.ResolveShareToken(ctx, link.Token)
	if err != nil {
		t.Fatalf("second ResolveShareToken failed: %v", err)
	}
	if got.ViewCount != 2 {
		t.Errorf("second resolve view_count = %d, want 2", got.ViewCount)
	}

	// Deactivated links stop resolving but keep their history.
	if err := s.DeactivateShareLink(ctx, link.Token, userID); err != nil {
		t.Fatalf("DeactivateShareLink failed: %v", err)
	}
	if _, err := s.ResolveShareToken(ctx, link.Token); !errors.Is(err, ErrNotFound) {
		t.Errorf("deactivated token: err = %v, want ErrNotFound", err)
	}
	var views int
	if err := s.pool.QueryRow(ctx,
		"SELECT view_count FROM shared_links WHERE token = $1", link.Token,
	).Scan(&views); err != nil {
		t.Fatalf("select view_count: %v", err)
	}
	if views != 2 {
		t.Errorf("view history after deactivation = %d, want 2", views)
	}

	// Expired links look exactly like unknown ones.
	past := time.Now().UTC().Add(-time.Hour)
	expired, err := s.CreateShareLink(ctx, conv.ID, a.ID, userID, &past)
	if err != nil {
		t.Fatalf("CreateShareLink (expired) failed: %v", err)
	}
	if _, err := s.ResolveShareToken(ctx, expired.Token); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired token: err = %v, want ErrNotFound", err)
	}
	if _, err := s.ResolveShareToken(ctx, "no-such-token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown token: err = %v, want ErrNotFound", err)
	}
}

func TestIntegration_CountUsageMonthBuckets(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	userID, _ := seedUserAndConversation(t, s)

	january := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	february := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)

	for _, ts := range []time.Time{january, january, february} {
		if err := s.TrackUsage(ctx, userID, "analysis", ts); err != nil {
			t.Fatalf("TrackUsage failed: %v", err)
		}
	}
	// A different action must not leak into the analysis bucket.
	if err := s.TrackUsage(ctx, userID, "export", january); err != nil {
		t.Fatalf("TrackUsage (export) failed: %v", err)
	}

	jan, err := s.CountUsage(ctx, userID, "2026-01", "analysis")
	if err != nil {
		t.Fatalf("CountUsage failed: %v", err)
	}
	if jan != 2 {
		t.Errorf("january count = %d, want 2", jan)
	}
	feb, err := s.CountUsage(ctx, userID, "2026-02", "analysis")
	if err != nil {
		t.Fatalf("CountUsage failed: %v", err)
	}
	if feb != 1 {
		t.Errorf("february count = %d, want 1", feb)
	}
	none, err := s.CountUsage(ctx, userID, "2026-03", "analysis")
	if err != nil {
		t.Fatalf("CountUsage failed: %v", err)
	}
	if none != 0 {
		t.Errorf("empty month count = %d, want 0", none)
	}
}
