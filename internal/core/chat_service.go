package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ashley-code01/chatbot-backend/internal/store"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	FeedbackPositive = "positive"
	FeedbackNegative = "negative"

	SourceUserInput = "user_input"
	SourceUnknown   = "unknown"
)

type ChatService struct {
	dbStore *store.SQLiteStore
}

func NewChatService(db *store.SQLiteStore) *ChatService {
	return &ChatService{dbStore: db}
}

// PostMessageInput carries the caller-supplied fields for PostMessage.
// Everything except Content is optional.
type PostMessageInput struct {
	SessionID string
	UserID    *string
	Role      string
	Content   string
	Source    string
}

type PostMessageResult struct {
	SessionID string
	MessageID int64
	Timestamp time.Time
}

// PostMessage appends a message to the conversation identified by the
// session id, creating the conversation on first use. An empty session id
// starts a fresh conversation under a generated id, which is returned so
// the caller can continue the thread.
func (s *ChatService) PostMessage(in PostMessageInput) (*PostMessageResult, error) {
	if in.Content == "" {
		return nil, newValidationError("message content is required")
	}

	role := in.Role
	if role == "" {
		role = RoleUser
	}
	if role != RoleUser && role != RoleAssistant {
		return nil, newValidationError(`role must be "user" or "assistant"`)
	}

	source := in.Source
	if source == "" {
		if role == RoleUser {
			source = SourceUserInput
		} else {
			source = SourceUnknown
		}
	}

	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	msg := store.Message{
		Role:    role,
		Content: in.Content,
		Source:  &source,
	}
	if err := s.dbStore.AppendMessage(sessionID, in.UserID, &msg); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	return &PostMessageResult{
		SessionID: sessionID,
		MessageID: msg.ID,
		Timestamp: msg.Timestamp,
	}, nil
}

// GetHistory returns the messages of a session in the order they were
// appended.
func (s *ChatService) GetHistory(sessionID string) ([]store.Message, error) {
	conv, err := s.dbStore.GetConversationBySessionID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if conv == nil {
		return nil, ErrSessionNotFound
	}

	messages, err := s.dbStore.GetMessagesByConversationID(conv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return messages, nil
}

// SubmitFeedback records a positive/negative rating on a message,
// overwriting any previous rating and comment.
func (s *ChatService) SubmitFeedback(messageID int64, feedback string, comment *string) error {
	if feedback != FeedbackPositive && feedback != FeedbackNegative {
		return newValidationError(`feedback must be "positive" or "negative"`)
	}

	found, err := s.dbStore.UpdateMessageFeedback(messageID, feedback, comment)
	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}
	if !found {
		return ErrMessageNotFound
	}
	return nil
}

// ListSessions returns all conversations, most recently active first.
func (s *ChatService) ListSessions() ([]store.SessionSummary, error) {
	return s.dbStore.ListSessions()
}
