// Package api exposes the HTTP/JSON surface: conversation submission
// and analysis, subscription status and billing glue, and public share
// links.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/claritylabs/claritycheck/internal/analysis"
	"github.com/claritylabs/claritycheck/internal/billing"
	"github.com/claritylabs/claritycheck/internal/events"
	"github.com/claritylabs/claritycheck/internal/models"
	"github.com/claritylabs/claritycheck/internal/quota"
)

// Store is the persistence surface the handlers need. *store.Store
// satisfies it; tests substitute a fake.
type Store interface {
	CreateConversation(ctx context.Context, c models.Conversation) (models.Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (models.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID string, limit int) ([]models.Conversation, error)

	CreateAnalysis(ctx context.Context, a models.Analysis) (models.Analysis, error)
	ReplaceAnalysis(ctx context.Context, a models.Analysis) (models.Analysis, error)
	GetAnalysisByConversation(ctx context.Context, conversationID uuid.UUID) (models.Analysis, error)

	GetUser(ctx context.Context, id string) (models.User, error)
	UpsertUser(ctx context.Context, id, email, authProvider string) (models.User, error)
	UpdateSubscription(ctx context.Context, userID, plan, status, customerID, subscriptionID string) error

	TrackUsage(ctx context.Context, userID, action string, now time.Time) error
	CountUsage(ctx context.Context, userID, month, action string) (int, error)

	CreateShareLink(ctx context.Context, conversationID, analysisID uuid.UUID, createdBy string, expiresAt *time.Time) (models.SharedLink, error)
	ResolveShareToken(ctx context.Context, token string) (models.SharedLink, error)
	DeactivateShareLink(ctx context.Context, token, createdBy string) error

	ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error)
	GetPlan(ctx context.Context, id string) (models.SubscriptionPlan, error)
}

// Analyzer is the orchestration surface; *analysis.Orchestrator
// satisfies it.
type Analyzer interface {
	Run(ctx context.Context, text, imageURL string, opts analysis.Options) (*analysis.Result, error)
	Parse(ctx context.Context, text, imageURL string, opts analysis.Options) ([]string, []models.Message, error)
	Reanalyze(ctx context.Context, speakers []string, messages []models.Message, opts analysis.Options) (*analysis.Result, error)
}

// BillingClient is the billing-provider glue; *billing.Client satisfies
// it. May be nil when billing is not configured.
type BillingClient interface {
	CreateCheckoutSession(ctx context.Context, customerEmail, priceID, successURL, cancelURL string) (billing.CheckoutSession, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

type Options struct {
	Port       int
	DevMode    bool
	AppBaseURL string
	Store      Store
	Analyzer   Analyzer
	Quota      *quota.Tracker
	Billing    BillingClient
	Events     *events.Publisher
	Logger     *slog.Logger
}

type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	store      Store
	analyzer   Analyzer
	quota      *quota.Tracker
	billing    BillingClient
	events     *events.Publisher
	logger     *slog.Logger
	devMode    bool
	appBaseURL string
}

func NewServer(opts Options) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:     router,
		store:      opts.Store,
		analyzer:   opts.Analyzer,
		quota:      opts.Quota,
		billing:    opts.Billing,
		events:     opts.Events,
		logger:     opts.Logger,
		devMode:    opts.DevMode,
		appBaseURL: opts.AppBaseURL,
	}
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	router.Get("/health", s.health)

	router.Route("/api", func(r chi.Router) {
		// Public share resolution; everything else needs an identity.
		r.Get("/shared/{token}", s.getShared)

		r.Group(func(r chi.Router) {
			r.Use(s.identity)

			r.Route("/conversations", func(r chi.Router) {
				r.Post("/", s.createConversation)
				r.Get("/", s.listConversations)
				r.Get("/{id}", s.getConversation)
				r.Post("/{id}/analyze", s.analyzeConversation)
				r.Get("/{id}/analysis", s.getAnalysis)
				r.Post("/{id}/reanalyze", s.reanalyzeConversation)
				r.Post("/{id}/share", s.createShare)
			})

			r.Delete("/shared/{token}", s.revokeShare)

			r.Route("/subscription", func(r chi.Router) {
				r.Get("/status", s.subscriptionStatus)
				r.Post("/create", s.subscriptionCreate)
				r.Post("/cancel", s.subscriptionCancel)
			})
		})
	})

	return s
}

func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
