package api

import (
	"net/http"
	"time"
)

func (h *APIHandler) TrainingStatusHandler(w http.ResponseWriter, r *http.Request) {
	status, err := h.trainingService.GetStatus()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":             true,
		"total_documents":     status.TotalDocuments,
		"processed_documents": status.ProcessedDocuments,
		"pending_documents":   status.PendingDocuments,
		"status":              status.Status,
	})
}

type documentSummary struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	FileType   *string   `json:"file_type"`
	Category   *string   `json:"category"`
	Processed  bool      `json:"processed"`
	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func (h *APIHandler) ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	docs, err := h.trainingService.ListDocuments()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]documentSummary, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentSummary{
			ID:         doc.ID,
			Title:      doc.Title,
			FileType:   doc.FileType,
			Category:   doc.Category,
			Processed:  doc.Processed,
			ChunkCount: doc.ChunkCount,
			UploadedAt: doc.UploadedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"documents": out,
		"total":     len(out),
	})
}

func (h *APIHandler) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	// Always defers; retry policy is the caller's call.
	writeServiceError(w, h.trainingService.UploadDocument())
}
