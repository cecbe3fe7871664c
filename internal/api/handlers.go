package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ashley-code01/chatbot-backend/internal/config"
	"github.com/ashley-code01/chatbot-backend/internal/core"
)

type APIHandler struct {
	chatService     *core.ChatService
	statsService    *core.StatsService
	trainingService *core.TrainingService
}

func NewAPIHandler(cs *core.ChatService, ss *core.StatsService, ts *core.TrainingService) *APIHandler {
	return &APIHandler{
		chatService:     cs,
		statsService:    ss,
		trainingService: ts,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	payload := map[string]interface{}{"error": message}
	if status >= http.StatusInternalServerError {
		payload["success"] = false
	}
	writeJSON(w, status, payload)
}

// writeServiceError maps the service error kinds onto response categories.
// Store failures surface as a generic 500; their details only reach the log.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case core.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, core.ErrMessageNotFound):
		writeError(w, http.StatusNotFound, "Message not found")
	case errors.Is(err, core.ErrNotImplemented):
		writeJSON(w, http.StatusNotImplemented, map[string]interface{}{
			"success": false,
			"message": "Document upload will be implemented in Phase 2",
			"phase":   "coming_soon",
		})
	default:
		log.Printf("Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   config.AppConfig.Version,
	})
}

func (h *APIHandler) APIInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "AI Chatbot NLP Backend",
		"version": config.AppConfig.Version,
		"endpoints": map[string]string{
			"health":   "/api/health",
			"chat":     "/api/chat/message",
			"training": "/api/training/upload",
			"admin":    "/api/admin/stats",
		},
	})
}
