package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/claritylabs/claritycheck/internal/events"
)

type createShareRequest struct {
	ExpiresInDays int `json:"expiresInDays"`
}

func (s *Server) createShare(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.ownedConversation(w, r)
	if !ok {
		return
	}

	// A share points at a concrete analysis, so one must exist first.
	a, err := s.store.GetAnalysisByConversation(r.Context(), conv.ID)
	if err != nil {
		s.handleError(w, "Failed to load analysis", err)
		return
	}

	var req createShareRequest
	if r.Body != nil {
		// Body is optional; a missing or empty one means no expiry.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	var expiresAt *time.Time
	if req.ExpiresInDays > 0 {
		t := time.Now().UTC().AddDate(0, 0, req.ExpiresInDays)
		expiresAt = &t
	}

	link, err := s.store.CreateShareLink(r.Context(), conv.ID, a.ID, userID(r), expiresAt)
	if err != nil {
		s.handleError(w, "Failed to create share link", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"share":    link,
		"shareUrl": fmt.Sprintf("%s/shared/%s", s.appBaseURL, link.Token),
	})
}

// sharedConversation is the redacted view exposed on public share
// pages. The owner's identity never leaves the server.
type sharedConversation struct {
	Text      string    `json:"text"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) getShared(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	link, err := s.store.ResolveShareToken(r.Context(), token)
	if err != nil {
		s.handleError(w, "Failed to resolve share link", err)
		return
	}

	conv, err := s.store.GetConversation(r.Context(), link.ConversationID)
	if err != nil {
		s.handleError(w, "Failed to load shared conversation", err)
		return
	}
	a, err := s.store.GetAnalysisByConversation(r.Context(), link.ConversationID)
	if err != nil {
		s.handleError(w, "Failed to load shared analysis", err)
		return
	}

	s.publish(events.SubjectShareViewed, map[string]any{
		"token":          link.Token,
		"conversationId": link.ConversationID,
		"viewCount":      link.ViewCount,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"conversation": sharedConversation{
			Text:      conv.Text,
			ImageURL:  conv.ImageURL,
			Language:  conv.Language,
			CreatedAt: conv.CreatedAt,
		},
		"analysis": a,
		"shareInfo": map[string]any{
			"token":     link.Token,
			"viewCount": link.ViewCount,
			"createdAt": link.CreatedAt,
			"expiresAt": link.ExpiresAt,
		},
	})
}

func (s *Server) revokeShare(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := s.store.DeactivateShareLink(r.Context(), token, userID(r)); err != nil {
		s.handleError(w, "Failed to revoke share link", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Share link revoked"})
}
