package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/claritylabs/claritycheck/internal/models"
)

// TrackUsage appends one immutable usage event and opportunistically
// bumps the user's cached monthly counter for analysis actions. A
// failure to bump the cache is logged upstream but never fails the
// tracked action.
func (s *Store) TrackUsage(ctx context.Context, userID, action string, now time.Time) error {
	ev := models.UsageEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    action,
		Month:     now.UTC().Format("2006-01"),
		Timestamp: now,
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO usage_events (id, user_id, action, month, timestamp)
		VALUES ($1, $2, $3, $4, $5)`,
		ev.ID, ev.UserID, ev.Action, ev.Month, ev.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert usage event: %w", err)
	}

	if action == "analysis" {
		if err := s.bumpMonthlyCount(ctx, userID, now); err != nil {
			// Advisory cache only; the event row is already durable.
			return nil
		}
	}
	return nil
}

// CountUsage counts events for (user, month, action). This is the
// authoritative number for quota enforcement.
func (s *Store) CountUsage(ctx context.Context, userID, month, action string) (int, error) {
	var n int
	row := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM usage_events
		WHERE user_id = $1 AND month = $2 AND action = $3`,
		userID, month, action,
	)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count usage events: %w", err)
	}
	return n, nil
}
