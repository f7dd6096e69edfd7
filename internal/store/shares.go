package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claritylabs/claritycheck/internal/models"
)

// newShareToken builds an opaque URL-safe token from two random UUIDs.
func newShareToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

// CreateShareLink mints an active share link for a conversation/analysis
// pair. expiresAt may be nil for a non-expiring link.
func (s *Store) CreateShareLink(ctx context.Context, conversationID, analysisID uuid.UUID, createdBy string, expiresAt *time.Time) (models.SharedLink, error) {
	link := models.SharedLink{
		ID:             uuid.New(),
		Token:          newShareToken(),
		ConversationID: conversationID,
		AnalysisID:     analysisID,
		CreatedBy:      createdBy,
		IsActive:       true,
		ExpiresAt:      expiresAt,
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO shared_links (id, token, conversation_id, analysis_id, created_by, is_active, expires_at, view_count, created_at)
		VALUES ($1, $2, $3, $4, $5, true, $6, 0, now())
		RETURNING created_at`,
		link.ID, link.Token, link.ConversationID, link.AnalysisID, link.CreatedBy, link.ExpiresAt,
	)
	if err := row.Scan(&link.CreatedAt); err != nil {
		return models.SharedLink{}, fmt.Errorf("insert share link: %w", err)
	}
	return link, nil
}

// ResolveShareToken atomically increments the view counter and returns
// the link, but only while it is active and unexpired. Inactive,
// expired, and unknown tokens are indistinguishable: all ErrNotFound.
func (s *Store) ResolveShareToken(ctx context.Context, token string) (models.SharedLink, error) {
	var link models.SharedLink
	row := s.pool.QueryRow(ctx, `
		UPDATE shared_links
		SET view_count = view_count + 1
		WHERE token = $1 AND is_active AND (expires_at IS NULL OR expires_at > now())
		RETURNING id, token, conversation_id, analysis_id, created_by, is_active, expires_at, view_count, created_at`,
		token,
	)
	err := row.Scan(&link.ID, &link.Token, &link.ConversationID, &link.AnalysisID, &link.CreatedBy,
		&link.IsActive, &link.ExpiresAt, &link.ViewCount, &link.CreatedAt)
	if notFound(err) {
		return models.SharedLink{}, ErrNotFound
	}
	if err != nil {
		return models.SharedLink{}, fmt.Errorf("resolve share token: %w", err)
	}
	return link, nil
}

// DeactivateShareLink soft-disables a link; rows are never deleted so
// view history survives revocation.
func (s *Store) DeactivateShareLink(ctx context.Context, token, createdBy string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE shared_links SET is_active = false
		WHERE token = $1 AND created_by = $2`,
		token, createdBy,
	)
	if err != nil {
		return fmt.Errorf("deactivate share link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
