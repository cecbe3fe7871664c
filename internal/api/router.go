package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ashley-code01/chatbot-backend/internal/config"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// CORS for the React frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: config.AppConfig.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	// All API routes live under /api
	r.Route("/api", func(r chi.Router) {
		r.Get("/", apiHandler.APIInfoHandler)
		r.Get("/health", apiHandler.HealthHandler)

		r.Route("/chat", func(r chi.Router) {
			r.Post("/message", apiHandler.PostMessageHandler)
			r.Get("/history/{sessionID}", apiHandler.GetHistoryHandler)
			r.Post("/feedback", apiHandler.SubmitFeedbackHandler)
			r.Get("/sessions", apiHandler.ListSessionsHandler)
		})

		r.Route("/training", func(r chi.Router) {
			r.Get("/status", apiHandler.TrainingStatusHandler)
			r.Get("/documents", apiHandler.ListDocumentsHandler)
			r.Post("/upload", apiHandler.UploadDocumentHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/stats", apiHandler.GetStatsHandler)
			r.Get("/feedback/summary", apiHandler.FeedbackSummaryHandler)
		})
	})

	return r
}
