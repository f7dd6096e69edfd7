package store

import (
	"context"
	"fmt"
	"time"

	"github.com/claritylabs/claritycheck/internal/models"
)

// GetUser returns a user by id, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	row := s.pool.QueryRow(ctx, `
		SELECT id, COALESCE(email, ''), COALESCE(auth_provider, ''),
		       subscription_plan, subscription_status,
		       COALESCE(billing_customer_id, ''), COALESCE(billing_subscription_id, ''),
		       monthly_analysis_count, last_analysis_reset, created_at, updated_at
		FROM users WHERE id = $1`, id,
	)
	err := row.Scan(&u.ID, &u.Email, &u.AuthProvider, &u.SubscriptionPlan, &u.SubscriptionStatus,
		&u.BillingCustomerID, &u.BillingSubscriptionID, &u.MonthlyAnalysisCount, &u.LastAnalysisReset,
		&u.CreatedAt, &u.UpdatedAt)
	if notFound(err) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// UpsertUser creates the user on first sight of an identity and
// refreshes email/provider on subsequent logins. New users start on the
// free plan.
func (s *Store) UpsertUser(ctx context.Context, id, email, authProvider string) (models.User, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, auth_provider, subscription_plan, subscription_status, monthly_analysis_count, created_at, updated_at)
		VALUES ($1, $2, $3, 'free', 'active', 0, now(), now())
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, auth_provider = EXCLUDED.auth_provider, updated_at = now()`,
		id, email, authProvider,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return s.GetUser(ctx, id)
}

// UpdateSubscription writes billing-provider state onto the user row.
func (s *Store) UpdateSubscription(ctx context.Context, userID, plan, status, customerID, subscriptionID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET subscription_plan = $1, subscription_status = $2,
		       billing_customer_id = NULLIF($3, ''), billing_subscription_id = NULLIF($4, ''),
		       updated_at = now()
		WHERE id = $5`,
		plan, status, customerID, subscriptionID, userID,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return nil
}

// bumpMonthlyCount maintains the advisory cached counter: reset to 1 on
// a month rollover, otherwise increment. Accuracy is not load-bearing;
// enforcement counts usage_events.
func (s *Store) bumpMonthlyCount(ctx context.Context, userID string, now time.Time) error {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	currentMonth := now.UTC().Format("2006-01")
	userMonth := currentMonth
	if u.LastAnalysisReset != nil {
		userMonth = u.LastAnalysisReset.UTC().Format("2006-01")
	}

	if userMonth != currentMonth {
		_, err = s.pool.Exec(ctx, `
			UPDATE users SET monthly_analysis_count = 1, last_analysis_reset = $1, updated_at = now()
			WHERE id = $2`, now, userID)
	} else {
		_, err = s.pool.Exec(ctx, `
			UPDATE users SET monthly_analysis_count = monthly_analysis_count + 1, updated_at = now()
			WHERE id = $1`, userID)
	}
	if err != nil {
		return fmt.Errorf("bump monthly count: %w", err)
	}
	return nil
}

// ResetMonthlyUsage zeroes the cached counter and stamps the reset time.
func (s *Store) ResetMonthlyUsage(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET monthly_analysis_count = 0, last_analysis_reset = now(), updated_at = now()
		WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("reset monthly usage: %w", err)
	}
	return nil
}
