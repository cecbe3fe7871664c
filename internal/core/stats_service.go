package core

import (
	"fmt"
	"time"

	"github.com/ashley-code01/chatbot-backend/internal/store"
)

// recentActivityLimit caps how many conversations the overview reports.
const recentActivityLimit = 5

// previewLength is the number of characters of message content included in
// feedback summaries before truncation.
const previewLength = 100

type StatsService struct {
	dbStore *store.SQLiteStore
}

func NewStatsService(db *store.SQLiteStore) *StatsService {
	return &StatsService{dbStore: db}
}

type FeedbackCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Total    int `json:"total"`
}

type Statistics struct {
	Conversations     int            `json:"conversations"`
	Messages          int            `json:"messages"`
	Users             int            `json:"users"`
	TrainingDocuments int            `json:"training_documents"`
	Feedback          FeedbackCounts `json:"feedback"`
}

type FeedbackEntry struct {
	MessageID int64     `json:"id"`
	Feedback  string    `json:"feedback"`
	Comment   *string   `json:"comment"`
	Preview   string    `json:"message_preview"`
	Timestamp time.Time `json:"timestamp"`
	Source    *string   `json:"source"`
}

// GetStats computes the system overview fresh from the store: entity
// counts, feedback tallies and the five most recently active sessions.
func (s *StatsService) GetStats() (*Statistics, []store.SessionActivity, error) {
	conversations, err := s.dbStore.CountConversations()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count conversations: %w", err)
	}
	messages, err := s.dbStore.CountMessages()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count messages: %w", err)
	}
	users, err := s.dbStore.CountDistinctUsers()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count users: %w", err)
	}
	documents, _, err := s.dbStore.CountTrainingDocuments()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count documents: %w", err)
	}
	positive, err := s.dbStore.CountMessagesByFeedback(FeedbackPositive)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count positive feedback: %w", err)
	}
	negative, err := s.dbStore.CountMessagesByFeedback(FeedbackNegative)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count negative feedback: %w", err)
	}

	activity, err := s.dbStore.RecentActivity(recentActivityLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load recent activity: %w", err)
	}

	stats := &Statistics{
		Conversations:     conversations,
		Messages:          messages,
		Users:             users,
		TrainingDocuments: documents,
		Feedback: FeedbackCounts{
			Positive: positive,
			Negative: negative,
			Total:    positive + negative,
		},
	}
	return stats, activity, nil
}

// GetFeedbackSummary returns one entry per rated message, with the content
// cut down to a short preview.
func (s *StatsService) GetFeedbackSummary() ([]FeedbackEntry, error) {
	messages, err := s.dbStore.ListMessagesWithFeedback()
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback messages: %w", err)
	}

	entries := make([]FeedbackEntry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, FeedbackEntry{
			MessageID: msg.ID,
			Feedback:  *msg.Feedback,
			Comment:   msg.FeedbackComment,
			Preview:   previewContent(msg.Content),
			Timestamp: msg.Timestamp,
			Source:    msg.Source,
		})
	}
	return entries, nil
}

// previewContent truncates content to previewLength characters, marking
// the cut. Content at or under the limit passes through unchanged.
func previewContent(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}
