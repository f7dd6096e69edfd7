package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/claritylabs/claritycheck/internal/models"
)

// CreateAnalysis inserts a new analysis row for a conversation.
func (s *Store) CreateAnalysis(ctx context.Context, a models.Analysis) (models.Analysis, error) {
	a.ID = uuid.New()
	speakers, issues, summary, err := marshalAnalysis(a)
	if err != nil {
		return models.Analysis{}, err
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO analyses (id, conversation_id, speakers, issues, summary, clarity_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING created_at`,
		a.ID, a.ConversationID, speakers, issues, summary, a.ClarityScore,
	)
	if err := row.Scan(&a.CreatedAt); err != nil {
		return models.Analysis{}, fmt.Errorf("insert analysis: %w", err)
	}
	return a, nil
}

// ReplaceAnalysis deletes the prior analysis for a conversation and
// inserts the new one in a single transaction, so re-analysis never
// leaves the conversation without a row mid-flight.
func (s *Store) ReplaceAnalysis(ctx context.Context, a models.Analysis) (models.Analysis, error) {
	a.ID = uuid.New()
	speakers, issues, summary, err := marshalAnalysis(a)
	if err != nil {
		return models.Analysis{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Analysis{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM analyses WHERE conversation_id = $1`, a.ConversationID); err != nil {
		return models.Analysis{}, fmt.Errorf("delete prior analysis: %w", err)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO analyses (id, conversation_id, speakers, issues, summary, clarity_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING created_at`,
		a.ID, a.ConversationID, speakers, issues, summary, a.ClarityScore,
	)
	if err := row.Scan(&a.CreatedAt); err != nil {
		return models.Analysis{}, fmt.Errorf("insert analysis: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Analysis{}, fmt.Errorf("commit: %w", err)
	}
	return a, nil
}

// GetAnalysisByConversation returns the analysis for a conversation, or
// ErrNotFound.
func (s *Store) GetAnalysisByConversation(ctx context.Context, conversationID uuid.UUID) (models.Analysis, error) {
	var (
		a        models.Analysis
		speakers []byte
		issues   []byte
		summary  []byte
	)
	row := s.pool.QueryRow(ctx, `
		SELECT id, conversation_id, speakers, issues, summary, clarity_score, created_at
		FROM analyses WHERE conversation_id = $1`, conversationID,
	)
	err := row.Scan(&a.ID, &a.ConversationID, &speakers, &issues, &summary, &a.ClarityScore, &a.CreatedAt)
	if notFound(err) {
		return models.Analysis{}, ErrNotFound
	}
	if err != nil {
		return models.Analysis{}, fmt.Errorf("select analysis: %w", err)
	}
	if err := json.Unmarshal(speakers, &a.Speakers); err != nil {
		return models.Analysis{}, fmt.Errorf("decode speakers: %w", err)
	}
	if err := json.Unmarshal(issues, &a.Issues); err != nil {
		return models.Analysis{}, fmt.Errorf("decode issues: %w", err)
	}
	if err := json.Unmarshal(summary, &a.Summary); err != nil {
		return models.Analysis{}, fmt.Errorf("decode summary: %w", err)
	}
	return a, nil
}

func marshalAnalysis(a models.Analysis) (speakers, issues, summary []byte, err error) {
	if a.Speakers == nil {
		a.Speakers = []string{}
	}
	if a.Issues == nil {
		a.Issues = []models.Issue{}
	}
	if speakers, err = json.Marshal(a.Speakers); err != nil {
		return nil, nil, nil, fmt.Errorf("encode speakers: %w", err)
	}
	if issues, err = json.Marshal(a.Issues); err != nil {
		return nil, nil, nil, fmt.Errorf("encode issues: %w", err)
	}
	if summary, err = json.Marshal(a.Summary); err != nil {
		return nil, nil, nil, fmt.Errorf("encode summary: %w", err)
	}
	return speakers, issues, summary, nil
}
