package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tax-e/taxe-admin/internal/models"
)

// ErrAssistantUnavailable is returned when no assistant upstream is configured.
var ErrAssistantUnavailable = errors.New("assistant service is not configured")

// AssistantService relays admin chat messages to the upstream LLM gateway.
// The upstream is opaque: we send the message plus recent history and get
// one assistant turn back.
type AssistantService struct {
	url    string
	apiKey string
	client *http.Client
}

func NewAssistantService(url, apiKey string) *AssistantService {
	return &AssistantService{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type assistantRequest struct {
	Message string            `json:"message"`
	History []models.ChatTurn `json:"history,omitempty"`
}

type assistantResponse struct {
	Success bool            `json:"success"`
	Message models.ChatTurn `json:"message"`
	Error   string          `json:"error,omitempty"`
}

// Reply sends one message (with trailing history for context) upstream and
// returns the assistant's turn.
func (s *AssistantService) Reply(ctx context.Context, message string, history []models.ChatTurn) (models.ChatTurn, error) {
	if s == nil || s.url == "" {
		return models.ChatTurn{}, ErrAssistantUnavailable
	}

	// Only the last few turns matter for context; cap what we forward.
	if len(history) > 5 {
		history = history[len(history)-5:]
	}

	body, err := json.Marshal(assistantRequest{Message: message, History: history})
	if err != nil {
		return models.ChatTurn{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return models.ChatTurn{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return models.ChatTurn{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ChatTurn{}, fmt.Errorf("assistant upstream returned status %d", resp.StatusCode)
	}

	var out assistantResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.ChatTurn{}, err
	}
	if !out.Success {
		return models.ChatTurn{}, fmt.Errorf("assistant upstream error: %s", out.Error)
	}
	if out.Message.Role == "" {
		out.Message.Role = "assistant"
	}
	return out.Message, nil
}
