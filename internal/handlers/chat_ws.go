package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tax-e/taxe-admin/internal/middleware"
	"github.com/tax-e/taxe-admin/internal/models"
	"github.com/tax-e/taxe-admin/internal/services"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced at the HTTP CORS layer.
		return true
	},
}

// wsChatMessage is what the console sends over the assistant socket.
type wsChatMessage struct {
	Message string            `json:"message"`
	History []models.ChatTurn `json:"history,omitempty"`
}

// wsChatReply is one assistant turn, or an error the console can display.
type wsChatReply struct {
	Success bool             `json:"success"`
	Message *models.ChatTurn `json:"message,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// AssistantWebSocket handles GET /ws/assistant: a request/reply loop so
// the console chat panel can hold one connection instead of posting each
// turn. Runs behind AdminAuth (token via header or ?token=).
func AssistantWebSocket(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.AdminIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var msg wsChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Message == "" {
			_ = conn.WriteJSON(wsChatReply{Success: false, Error: "message is required"})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		reply, err := assistantService.Reply(ctx, msg.Message, msg.History)
		cancel()
		if err != nil {
			_ = conn.WriteJSON(wsChatReply{Success: false, Error: "assistant request failed"})
			continue
		}

		services.SaveChatTurnAsync(adminID.String(), models.ChatTurn{Role: "user", Content: msg.Message})
		services.SaveChatTurnAsync(adminID.String(), reply)

		if err := conn.WriteJSON(wsChatReply{Success: true, Message: &reply}); err != nil {
			return
		}
	}
}
