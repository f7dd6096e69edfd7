package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claritylabs/claritycheck/internal/analysis"
	"github.com/claritylabs/claritycheck/internal/backend"
	"github.com/claritylabs/claritycheck/internal/events"
	"github.com/claritylabs/claritycheck/internal/models"
	"github.com/claritylabs/claritycheck/internal/quota"
	"github.com/claritylabs/claritycheck/internal/store"
)

type createConversationRequest struct {
	Text           string `json:"text"`
	ImageURL       string `json:"imageUrl"`
	AnalysisDepth  string `json:"analysisDepth"`
	Language       string `json:"language"`
	AIModel        string `json:"aiModel"`
	ReasoningLevel string `json:"reasoningLevel"`
}

func analysisOptions(c models.Conversation) analysis.Options {
	return analysis.Options{
		Model:          c.AIModel,
		AnalysisDepth:  c.AnalysisDepth,
		Language:       c.Language,
		ReasoningLevel: c.ReasoningLevel,
	}
}

func (s *Server) createConversation(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid conversation data", err)
		return
	}
	if strings.TrimSpace(req.Text) == "" && req.ImageURL == "" {
		writeError(w, http.StatusBadRequest, "Either text or an image is required", nil)
		return
	}

	if req.AnalysisDepth == "" {
		req.AnalysisDepth = "standard"
	}
	if req.Language == "" {
		req.Language = "english"
	}
	if req.ReasoningLevel == "" {
		req.ReasoningLevel = "standard"
	}
	if req.AIModel == "" {
		req.AIModel = backend.DefaultModel
	}

	user, err := s.store.GetUser(r.Context(), uid)
	if err != nil {
		s.handleError(w, "Failed to load user", err)
		return
	}

	decision, err := s.quota.Check(r.Context(), uid, user.SubscriptionPlan, time.Now())
	if err != nil {
		s.handleError(w, "Failed to check usage limits", err)
		return
	}
	if !decision.Allowed {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"message": "Monthly analysis limit reached. Upgrade your plan to continue.",
			"error":   "quota_exceeded",
			"limit":   decision.Limit,
			"usage":   decision.Usage,
			"plan":    decision.Plan,
		})
		return
	}

	conv, err := s.store.CreateConversation(r.Context(), models.Conversation{
		UserID:         uid,
		Text:           req.Text,
		ImageURL:       req.ImageURL,
		AnalysisDepth:  req.AnalysisDepth,
		Language:       req.Language,
		AIModel:        req.AIModel,
		ReasoningLevel: req.ReasoningLevel,
	})
	if err != nil {
		s.handleError(w, "Failed to save conversation", err)
		return
	}

	if err := s.store.TrackUsage(r.Context(), uid, quota.ActionAnalysis, time.Now()); err != nil {
		// The conversation is already saved; the missing event means one
		// free analysis for the user, not a broken request.
		s.logger.Error("failed to record usage event", "user_id", uid, "error", err)
	}
	s.publish(events.SubjectUsageRecorded, map[string]any{
		"userId": uid,
		"action": quota.ActionAnalysis,
	})

	body := map[string]any{"conversation": conv}

	// Best effort: a parse preview lets the client render messages
	// while the full analysis runs. Failures are not surfaced.
	speakers, messages, err := s.analyzer.Parse(r.Context(), conv.Text, conv.ImageURL, analysisOptions(conv))
	if err != nil {
		s.logger.Warn("parse preview failed", "conversation_id", conv.ID, "error", err)
	} else {
		body["speakers"] = speakers
		body["messages"] = messages
	}

	writeJSON(w, http.StatusCreated, body)
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := s.store.ListConversationsByUser(r.Context(), userID(r), 50)
	if err != nil {
		s.handleError(w, "Failed to list conversations", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

// ownedConversation loads the conversation and enforces ownership.
// Someone else's conversation looks identical to a missing one.
func (s *Server) ownedConversation(w http.ResponseWriter, r *http.Request) (models.Conversation, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid conversation id", err)
		return models.Conversation{}, false
	}
	conv, err := s.store.GetConversation(r.Context(), id)
	if err != nil {
		s.handleError(w, "Failed to load conversation", err)
		return models.Conversation{}, false
	}
	if conv.UserID != userID(r) {
		writeError(w, http.StatusNotFound, "Not found", nil)
		return models.Conversation{}, false
	}
	return conv, true
}

func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.ownedConversation(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversation": conv})
}

func (s *Server) analyzeConversation(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.ownedConversation(w, r)
	if !ok {
		return
	}

	// Idempotent: a second analyze returns the stored result instead of
	// spending another backend call.
	existing, err := s.store.GetAnalysisByConversation(r.Context(), conv.ID)
	if err == nil {
		writeJSON(w, http.StatusOK, map[string]any{"analysis": existing})
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.handleError(w, "Failed to load analysis", err)
		return
	}

	result, err := s.analyzer.Run(r.Context(), conv.Text, conv.ImageURL, analysisOptions(conv))
	if err != nil {
		s.handleError(w, "Failed to analyze conversation", err)
		return
	}

	saved, err := s.store.CreateAnalysis(r.Context(), models.Analysis{
		ConversationID: conv.ID,
		Speakers:       result.Speakers,
		Issues:         result.Issues,
		Summary:        result.Summary,
		ClarityScore:   result.ClarityScore,
	})
	if err != nil {
		s.handleError(w, "Failed to save analysis", err)
		return
	}

	s.publish(events.SubjectAnalysisCompleted, map[string]any{
		"conversationId": conv.ID,
		"analysisId":     saved.ID,
		"clarityScore":   saved.ClarityScore,
		"issueCount":     len(saved.Issues),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"analysis": saved,
		"messages": result.Messages,
	})
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.ownedConversation(w, r)
	if !ok {
		return
	}
	a, err := s.store.GetAnalysisByConversation(r.Context(), conv.ID)
	if err != nil {
		s.handleError(w, "Failed to load analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analysis": a})
}

type reanalyzeRequest struct {
	Speakers []string         `json:"speakers"`
	Messages []models.Message `json:"messages"`
}

func (s *Server) reanalyzeConversation(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.ownedConversation(w, r)
	if !ok {
		return
	}

	var req reanalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid re-analysis data", err)
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "At least one message is required", nil)
		return
	}

	result, err := s.analyzer.Reanalyze(r.Context(), req.Speakers, req.Messages, analysisOptions(conv))
	if err != nil {
		s.handleError(w, "Failed to re-analyze conversation", err)
		return
	}

	saved, err := s.store.ReplaceAnalysis(r.Context(), models.Analysis{
		ConversationID: conv.ID,
		Speakers:       result.Speakers,
		Issues:         result.Issues,
		Summary:        result.Summary,
		ClarityScore:   result.ClarityScore,
	})
	if err != nil {
		s.handleError(w, "Failed to save analysis", err)
		return
	}

	s.publish(events.SubjectAnalysisCompleted, map[string]any{
		"conversationId": conv.ID,
		"analysisId":     saved.ID,
		"clarityScore":   saved.ClarityScore,
		"issueCount":     len(saved.Issues),
		"reanalysis":     true,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"analysis": saved,
		"messages": result.Messages,
	})
}

func (s *Server) publish(subject string, data any) {
	if err := s.events.Publish(subject, data); err != nil {
		s.logger.Warn("event publish failed", "subject", subject, "error", err)
	}
}
