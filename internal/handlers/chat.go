package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tax-e/taxe-admin/internal/middleware"
	"github.com/tax-e/taxe-admin/internal/models"
	"github.com/tax-e/taxe-admin/internal/services"
)

// assistantService is wired from main once config is loaded.
var assistantService *services.AssistantService

// InitAssistantService configures the chat relay.
func InitAssistantService(url, apiKey string) {
	assistantService = services.NewAssistantService(url, apiKey)
}

// ChatRequest is one console chat submission.
type ChatRequest struct {
	Message string            `json:"message"`
	History []models.ChatTurn `json:"history,omitempty"`
}

// ChatResponse carries the assistant's reply turn.
type ChatResponse struct {
	Success bool            `json:"success"`
	Message models.ChatTurn `json:"message"`
}

// Chat handles POST /api/admin/chat: relays to the assistant upstream and
// persists both turns to the admin's chat history.
func Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := assistantService.Reply(r.Context(), req.Message, req.History)
	if err != nil {
		if errors.Is(err, services.ErrAssistantUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "Assistant is not available")
			return
		}
		writeError(w, http.StatusBadGateway, "Assistant request failed")
		return
	}

	if adminID, ok := middleware.AdminIDFromContext(r.Context()); ok {
		services.SaveChatTurnAsync(adminID.String(), models.ChatTurn{Role: "user", Content: req.Message})
		services.SaveChatTurnAsync(adminID.String(), reply)
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Success: true,
		Message: reply,
	})
}

// GetChatHistory handles GET /api/admin/chat/history.
// Query params:
//
//	before (optional RFC3339 timestamp for pagination)
//	limit  (optional, default 50)
func GetChatHistory(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.AdminIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	limit := int64(50)
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if parsed, err := strconv.ParseInt(lStr, 10, 64); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var before *time.Time
	if bStr := r.URL.Query().Get("before"); bStr != "" {
		if t, err := time.Parse(time.RFC3339, bStr); err == nil {
			before = &t
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	records, hasMore, err := services.LoadChatHistory(ctx, adminID.String(), before, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load chat history")
		return
	}

	if records == nil {
		records = []models.ChatRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"messages": records,
		"has_more": hasMore,
	})
}
