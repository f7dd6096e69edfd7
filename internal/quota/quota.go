// Package quota enforces the monthly analysis allowance per
// subscription plan.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/claritylabs/claritycheck/internal/models"
)

// ActionAnalysis is the usage-event action counted against the monthly
// limit.
const ActionAnalysis = "analysis"

// Plan limits per calendar month. Premium is soft-allowed past its
// nominal limit; the number exists for display only.
var planLimits = map[string]int{
	models.PlanFree:    5,
	models.PlanPro:     50,
	models.PlanPremium: 200,
}

// MonthlyLimit returns the limit for a plan; unknown plans get the free
// allowance.
func MonthlyLimit(plan string) int {
	if limit, ok := planLimits[plan]; ok {
		return limit
	}
	return planLimits[models.PlanFree]
}

// MonthKey formats a wall-clock time as the YYYY-MM usage bucket.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// UsageCounter counts usage events for a user and month. The count is
// the authoritative source for enforcement; the cached counter on the
// user row is display-only.
type UsageCounter interface {
	CountUsage(ctx context.Context, userID, month, action string) (int, error)
}

// Decision is the outcome of a quota check. When Allowed is false the
// Limit/Usage/Plan triple feeds the client's upgrade prompt.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Limit   int    `json:"limit"`
	Usage   int    `json:"usage"`
	Plan    string `json:"plan"`
}

// Tracker checks plan allowances against the usage-event log.
type Tracker struct {
	counter UsageCounter
}

func NewTracker(counter UsageCounter) *Tracker {
	return &Tracker{counter: counter}
}

// Check resolves the plan limit and current-month usage for a user.
// Premium users are always allowed, even past the nominal limit. The
// check-then-record sequence is not atomic; slight overage under
// concurrent submissions is accepted.
func (t *Tracker) Check(ctx context.Context, userID, plan string, now time.Time) (Decision, error) {
	limit := MonthlyLimit(plan)
	usage, err := t.counter.CountUsage(ctx, userID, MonthKey(now), ActionAnalysis)
	if err != nil {
		return Decision{}, fmt.Errorf("count usage: %w", err)
	}

	d := Decision{Limit: limit, Usage: usage, Plan: plan}
	d.Allowed = plan == models.PlanPremium || usage < limit
	return d, nil
}
