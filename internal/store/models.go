package store

import "time"

type Conversation struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    *string   `json:"user_id"` // Nullable, not unique
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID              int64     `json:"id"`
	ConversationID  int64     `json:"conversation_id"`
	Role            string    `json:"role"` // "user" or "assistant"
	Content         string    `json:"content"`
	Timestamp       time.Time `json:"timestamp"`
	Feedback        *string   `json:"feedback"` // "positive", "negative", or null
	FeedbackComment *string   `json:"feedback_comment"`
	Source          *string   `json:"source"`
}

// SessionSummary is a conversation joined with its message count,
// as returned by the sessions listing.
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	UserID       *string   `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// SessionActivity is the reduced shape used for recent-activity reporting.
type SessionActivity struct {
	SessionID    string    `json:"session_id"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

type UserPreference struct {
	ID                  int64     `json:"id"`
	UserID              string    `json:"user_id"`
	PreferredName       *string   `json:"preferred_name"`
	Language            string    `json:"language"`
	TonePreference      *string   `json:"tone_preference"` // "formal", "casual", "technical"
	Interests           []string  `json:"interests"`
	ConversationSummary *string   `json:"conversation_summary"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type TrainingDocument struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	FileType   *string   `json:"file_type"`
	FilePath   *string   `json:"file_path"`
	UploadedAt time.Time `json:"uploaded_at"`
	Processed  bool      `json:"processed"`
	ChunkCount int       `json:"chunk_count"`
	Category   *string   `json:"category"`
	Tags       []string  `json:"tags"`
}
