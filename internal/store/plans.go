package store

import (
	"context"
	"fmt"

	"github.com/claritylabs/claritycheck/internal/models"
)

// ListPlans returns the active plan catalog.
func (s *Store) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, price_cents, monthly_limit, COALESCE(billing_price_id, ''), is_active, created_at
		FROM subscription_plans WHERE is_active ORDER BY price_cents`)
	if err != nil {
		return nil, fmt.Errorf("select plans: %w", err)
	}
	defer rows.Close()

	var out []models.SubscriptionPlan
	for rows.Next() {
		var p models.SubscriptionPlan
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.MonthlyLimit, &p.BillingPriceID, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPlan returns one catalog row, or ErrNotFound.
func (s *Store) GetPlan(ctx context.Context, id string) (models.SubscriptionPlan, error) {
	var p models.SubscriptionPlan
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, price_cents, monthly_limit, COALESCE(billing_price_id, ''), is_active, created_at
		FROM subscription_plans WHERE id = $1`, id)
	err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.MonthlyLimit, &p.BillingPriceID, &p.IsActive, &p.CreatedAt)
	if notFound(err) {
		return models.SubscriptionPlan{}, ErrNotFound
	}
	if err != nil {
		return models.SubscriptionPlan{}, fmt.Errorf("select plan: %w", err)
	}
	return p, nil
}

// SeedDefaultPlans inserts the built-in catalog if it isn't there yet.
// Existing rows are left untouched so price edits survive restarts.
func (s *Store) SeedDefaultPlans(ctx context.Context) error {
	defaults := []models.SubscriptionPlan{
		{ID: models.PlanFree, Name: "Free", PriceCents: 0, MonthlyLimit: 5},
		{ID: models.PlanPro, Name: "Pro", PriceCents: 900, MonthlyLimit: 50},
		{ID: models.PlanPremium, Name: "Premium", PriceCents: 2900, MonthlyLimit: 200},
	}
	for _, p := range defaults {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO subscription_plans (id, name, price_cents, monthly_limit, is_active, created_at)
			VALUES ($1, $2, $3, $4, true, now())
			ON CONFLICT (id) DO NOTHING`,
			p.ID, p.Name, p.PriceCents, p.MonthlyLimit,
		)
		if err != nil {
			return fmt.Errorf("seed plan %s: %w", p.ID, err)
		}
	}
	return nil
}
