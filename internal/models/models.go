// Package models holds the shared domain types persisted and exchanged
// over the API. Analysis payload shapes mirror what the model backends
// are instructed to return.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Issue severities.
const (
	SeverityCritical = "critical"
	SeverityModerate = "moderate"
	SeverityMinor    = "minor"
)

// Issue categories.
const (
	CategoryAssumptionGap     = "assumption_gap"
	CategoryAmbiguousLanguage = "ambiguous_language"
	CategoryToneMismatch      = "tone_mismatch"
	CategoryImplicitMeaning   = "implicit_meaning"
	CategoryOther             = "other"
)

// Message is a single parsed conversation message. LineNumber is the
// 1-based display position and must be renumbered after any reordering.
type Message struct {
	Speaker    string `json:"speaker"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp,omitempty"`
	LineNumber int    `json:"lineNumber"`
}

// SpeakerInterpretation is one speaker's likely reading of an ambiguous passage.
type SpeakerInterpretation struct {
	Speaker        string `json:"speaker"`
	Interpretation string `json:"interpretation"`
}

// Issue is a single detected miscommunication. The structural shape is
// enforced at the orchestration boundary; semantic correctness is the
// backend's problem.
type Issue struct {
	ID                     string                  `json:"id"`
	Severity               string                  `json:"severity"`
	Category               string                  `json:"category"`
	Title                  string                  `json:"title,omitempty"`
	Description            string                  `json:"description"`
	HighlightedText        string                  `json:"highlightedText,omitempty"`
	LineNumbers            []int                   `json:"lineNumbers,omitempty"`
	WhyConfusing           []string                `json:"whyConfusing,omitempty"`
	SuggestedImprovement   string                  `json:"suggestedImprovement,omitempty"`
	SpeakerInterpretations []SpeakerInterpretation `json:"speakerInterpretations,omitempty"`
	Confidence             float64                 `json:"confidence,omitempty"`
}

// Summary aggregates an analysis run.
type Summary struct {
	CriticalIssues        int      `json:"criticalIssues"`
	ModerateIssues        int      `json:"moderateIssues"`
	MinorIssues           int      `json:"minorIssues"`
	Suggestions           int      `json:"suggestions"`
	MainCategories        []string `json:"mainCategories"`
	KeyInsights           []string `json:"keyInsights,omitempty"`
	Recommendations       []string `json:"recommendations,omitempty"`
	CommunicationPatterns []string `json:"communicationPatterns,omitempty"`
}

// Conversation is the raw input record. Immutable once created; the
// re-analysis flow operates on corrected text, never on this row.
type Conversation struct {
	ID             uuid.UUID `json:"id"`
	UserID         string    `json:"userId"`
	Text           string    `json:"text"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	AnalysisDepth  string    `json:"analysisDepth"`
	Language       string    `json:"language"`
	AIModel        string    `json:"aiModel"`
	ReasoningLevel string    `json:"reasoningLevel"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Analysis is the persisted result of one orchestrator run. At most one
// row exists per conversation; re-analysis replaces it.
type Analysis struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversationId"`
	Speakers       []string  `json:"speakers"`
	Issues         []Issue   `json:"issues"`
	Summary        Summary   `json:"summary"`
	ClarityScore   int       `json:"clarityScore"`
	CreatedAt      time.Time `json:"createdAt"`
}

// User subscription plans.
const (
	PlanFree    = "free"
	PlanPro     = "pro"
	PlanPremium = "premium"
)

// User carries identity plus subscription state. MonthlyAnalysisCount is
// a display cache; usage_events is the authoritative count.
type User struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email,omitempty"`
	AuthProvider          string     `json:"authProvider,omitempty"`
	SubscriptionPlan      string     `json:"subscriptionPlan"`
	SubscriptionStatus    string     `json:"subscriptionStatus"`
	BillingCustomerID     string     `json:"-"`
	BillingSubscriptionID string     `json:"-"`
	MonthlyAnalysisCount  int        `json:"monthlyAnalysisCount"`
	LastAnalysisReset     *time.Time `json:"lastAnalysisReset,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// UsageEvent is an append-only usage record; rows are never mutated.
type UsageEvent struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Month     string    `json:"month"` // YYYY-MM
	Timestamp time.Time `json:"timestamp"`
}

// SharedLink grants revocable public read access to one analysis.
// Rows are soft-disabled via IsActive, never deleted.
type SharedLink struct {
	ID             uuid.UUID  `json:"id"`
	Token          string     `json:"token"`
	ConversationID uuid.UUID  `json:"conversationId"`
	AnalysisID     uuid.UUID  `json:"analysisId"`
	CreatedBy      string     `json:"createdBy"`
	IsActive       bool       `json:"isActive"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	ViewCount      int        `json:"viewCount"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// SubscriptionPlan is a catalog row for the billing page.
type SubscriptionPlan struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	PriceCents     int       `json:"priceCents"`
	MonthlyLimit   int       `json:"monthlyLimit"`
	BillingPriceID string    `json:"-"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}
