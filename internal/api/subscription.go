package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/claritylabs/claritycheck/internal/models"
	"github.com/claritylabs/claritycheck/internal/quota"
)

func (s *Server) subscriptionStatus(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	user, err := s.store.GetUser(r.Context(), uid)
	if err != nil {
		s.handleError(w, "Failed to load user", err)
		return
	}

	month := quota.MonthKey(time.Now())
	used, err := s.store.CountUsage(r.Context(), uid, month, quota.ActionAnalysis)
	if err != nil {
		s.handleError(w, "Failed to load usage", err)
		return
	}

	limit := quota.MonthlyLimit(user.SubscriptionPlan)
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	plans, err := s.store.ListPlans(r.Context())
	if err != nil {
		s.handleError(w, "Failed to load plans", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"plan":   user.SubscriptionPlan,
		"status": user.SubscriptionStatus,
		"usage": map[string]any{
			"used":      used,
			"limit":     limit,
			"remaining": remaining,
			"month":     month,
		},
		"plans": plans,
	})
}

type subscriptionCreateRequest struct {
	Plan string `json:"plan"`
}

func (s *Server) subscriptionCreate(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	if s.billing == nil {
		writeError(w, http.StatusServiceUnavailable, "Billing is not configured", nil)
		return
	}

	var req subscriptionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid subscription request", err)
		return
	}
	if req.Plan != models.PlanPro && req.Plan != models.PlanPremium {
		writeError(w, http.StatusBadRequest, "Plan must be pro or premium", nil)
		return
	}

	user, err := s.store.GetUser(r.Context(), uid)
	if err != nil {
		s.handleError(w, "Failed to load user", err)
		return
	}

	plan, err := s.store.GetPlan(r.Context(), req.Plan)
	if err != nil {
		s.handleError(w, "Failed to load plan", err)
		return
	}
	if plan.BillingPriceID == "" {
		writeError(w, http.StatusServiceUnavailable, "Plan is not available for purchase", nil)
		return
	}

	session, err := s.billing.CreateCheckoutSession(r.Context(),
		user.Email,
		plan.BillingPriceID,
		fmt.Sprintf("%s/subscription/success", s.appBaseURL),
		fmt.Sprintf("%s/subscription/cancel", s.appBaseURL),
	)
	if err != nil {
		s.handleError(w, "Failed to start checkout", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"checkoutUrl": session.URL,
		"sessionId":   session.ID,
	})
}

func (s *Server) subscriptionCancel(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	if s.billing == nil {
		writeError(w, http.StatusServiceUnavailable, "Billing is not configured", nil)
		return
	}

	user, err := s.store.GetUser(r.Context(), uid)
	if err != nil {
		s.handleError(w, "Failed to load user", err)
		return
	}
	if user.BillingSubscriptionID == "" {
		writeError(w, http.StatusBadRequest, "No active subscription to cancel", nil)
		return
	}

	if err := s.billing.CancelSubscription(r.Context(), user.BillingSubscriptionID); err != nil {
		s.handleError(w, "Failed to cancel subscription", err)
		return
	}

	if err := s.store.UpdateSubscription(r.Context(), uid,
		models.PlanFree, "canceled", user.BillingCustomerID, ""); err != nil {
		s.handleError(w, "Failed to update subscription", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Subscription canceled"})
}
