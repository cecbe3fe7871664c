package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashley-code01/chatbot-backend/internal/core"
	"github.com/ashley-code01/chatbot-backend/internal/store"
)

type postMessageRequest struct {
	Message   string  `json:"message"`
	SessionID string  `json:"session_id"`
	UserID    *string `json:"user_id"`
	Role      string  `json:"role"`
	Source    string  `json:"source"`
}

func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.chatService.PostMessage(core.PostMessageInput{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Role:      req.Role,
		Content:   req.Message,
		Source:    req.Source,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"session_id": result.SessionID,
		"message_id": result.MessageID,
		"message":    "Message saved successfully",
		"timestamp":  result.Timestamp.Format(time.RFC3339Nano),
	})
}

// historyMessage is the per-message shape of the history response. Feedback
// comments and internal foreign keys stay out of it.
type historyMessage struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Source    *string   `json:"source"`
	Feedback  *string   `json:"feedback"`
}

func (h *APIHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatService.GetHistory(sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]historyMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, historyMessage{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
			Source:    msg.Source,
			Feedback:  msg.Feedback,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"session_id":    sessionID,
		"messages":      out,
		"message_count": len(out),
	})
}

type feedbackRequest struct {
	MessageID *int64  `json:"message_id"`
	Feedback  *string `json:"feedback"`
	Comment   *string `json:"comment"`
}

func (h *APIHandler) SubmitFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.MessageID == nil || req.Feedback == nil {
		writeError(w, http.StatusBadRequest, "message_id and feedback are required")
		return
	}

	if err := h.chatService.SubmitFeedback(*req.MessageID, *req.Feedback, req.Comment); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Feedback recorded successfully",
	})
}

func (h *APIHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.chatService.ListSessions()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sessions == nil {
		sessions = []store.SessionSummary{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"sessions": sessions,
		"total":    len(sessions),
	})
}
