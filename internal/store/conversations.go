package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/claritylabs/claritycheck/internal/models"
)

// CreateConversation inserts the raw input record. Conversations are
// immutable after creation.
func (s *Store) CreateConversation(ctx context.Context, c models.Conversation) (models.Conversation, error) {
	c.ID = uuid.New()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO conversations (id, user_id, text, image_url, analysis_depth, language, ai_model, reasoning_level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		RETURNING created_at`,
		c.ID, c.UserID, c.Text, c.ImageURL, c.AnalysisDepth, c.Language, c.AIModel, c.ReasoningLevel,
	)
	if err := row.Scan(&c.CreatedAt); err != nil {
		return models.Conversation{}, fmt.Errorf("insert conversation: %w", err)
	}
	return c, nil
}

// GetConversation returns a conversation by id, or ErrNotFound.
func (s *Store) GetConversation(ctx context.Context, id uuid.UUID) (models.Conversation, error) {
	var c models.Conversation
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, text, COALESCE(image_url, ''), analysis_depth, language, ai_model, reasoning_level, created_at
		FROM conversations WHERE id = $1`, id,
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Text, &c.ImageURL, &c.AnalysisDepth, &c.Language, &c.AIModel, &c.ReasoningLevel, &c.CreatedAt)
	if notFound(err) {
		return models.Conversation{}, ErrNotFound
	}
	if err != nil {
		return models.Conversation{}, fmt.Errorf("select conversation: %w", err)
	}
	return c, nil
}

// ListConversationsByUser returns a user's conversations, newest first.
func (s *Store) ListConversationsByUser(ctx context.Context, userID string, limit int) ([]models.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, text, COALESCE(image_url, ''), analysis_depth, language, ai_model, reasoning_level, created_at
		FROM conversations WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select conversations: %w", err)
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Text, &c.ImageURL, &c.AnalysisDepth, &c.Language, &c.AIModel, &c.ReasoningLevel, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
