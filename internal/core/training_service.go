package core

import (
	"fmt"

	"github.com/ashley-code01/chatbot-backend/internal/store"
)

// TrainingService exposes the training-document registry. Documents are
// read-only here: the ingestion pipeline that would create them is a later
// phase, and UploadDocument reflects that.
type TrainingService struct {
	dbStore *store.SQLiteStore
}

func NewTrainingService(db *store.SQLiteStore) *TrainingService {
	return &TrainingService{dbStore: db}
}

type TrainingStatus struct {
	TotalDocuments     int    `json:"total_documents"`
	ProcessedDocuments int    `json:"processed_documents"`
	PendingDocuments   int    `json:"pending_documents"`
	Status             string `json:"status"`
}

func (s *TrainingService) GetStatus() (*TrainingStatus, error) {
	total, processed, err := s.dbStore.CountTrainingDocuments()
	if err != nil {
		return nil, fmt.Errorf("failed to read training status: %w", err)
	}
	return &TrainingStatus{
		TotalDocuments:     total,
		ProcessedDocuments: processed,
		PendingDocuments:   total - processed,
		Status:             "ready",
	}, nil
}

func (s *TrainingService) ListDocuments() ([]store.TrainingDocument, error) {
	return s.dbStore.ListTrainingDocuments()
}

// UploadDocument is deliberately deferred. Callers get a distinct
// not-implemented signal rather than a generic failure.
func (s *TrainingService) UploadDocument() error {
	return ErrNotImplemented
}
