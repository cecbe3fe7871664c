package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS conversations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT UNIQUE NOT NULL,
        user_id TEXT,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations (user_id);

    CREATE TABLE IF NOT EXISTS messages (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        conversation_id INTEGER NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
        content TEXT NOT NULL,
        timestamp DATETIME NOT NULL,
        feedback TEXT CHECK (feedback IN ('positive', 'negative')),
        feedback_comment TEXT,
        source TEXT,
        FOREIGN KEY (conversation_id) REFERENCES conversations (id) ON DELETE CASCADE
    );
    CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages (conversation_id, id);
    CREATE INDEX IF NOT EXISTS idx_messages_feedback ON messages (feedback);

    CREATE TABLE IF NOT EXISTS user_preferences (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id TEXT UNIQUE NOT NULL,
        preferred_name TEXT,
        language TEXT NOT NULL DEFAULT 'en',
        tone_preference TEXT,
        interests TEXT, -- JSON array of strings
        conversation_summary TEXT,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS training_documents (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        title TEXT NOT NULL,
        content TEXT NOT NULL,
        file_type TEXT,
        file_path TEXT,
        uploaded_at DATETIME NOT NULL,
        processed BOOLEAN NOT NULL DEFAULT FALSE,
        chunk_count INTEGER NOT NULL DEFAULT 0,
        category TEXT,
        tags TEXT -- JSON array of strings
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Conversation methods

func (s *SQLiteStore) GetConversationBySessionID(sessionID string) (*Conversation, error) {
	var conv Conversation
	var userID sql.NullString
	err := s.db.QueryRow(
		"SELECT id, session_id, user_id, created_at, updated_at FROM conversations WHERE session_id = ?",
		sessionID,
	).Scan(&conv.ID, &conv.SessionID, &userID, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Conversation not found
		}
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	if userID.Valid {
		conv.UserID = &userID.String
	}
	return &conv, nil
}

// AppendMessage stores a message under the conversation identified by
// sessionID, creating the conversation first if it does not exist. The
// find-or-create and the insert run in one transaction, with the UNIQUE
// constraint on session_id resolving concurrent creation: losers of the
// race hit ON CONFLICT DO NOTHING and append to the winner's row.
func (s *SQLiteStore) AppendMessage(sessionID string, userID *string, msg *Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.Exec(
		"INSERT INTO conversations (session_id, user_id, created_at, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT(session_id) DO NOTHING",
		sessionID, userID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert conversation: %w", err)
	}

	var convID int64
	if err = tx.QueryRow("SELECT id FROM conversations WHERE session_id = ?", sessionID).Scan(&convID); err != nil {
		return fmt.Errorf("failed to resolve conversation id: %w", err)
	}

	msg.ConversationID = convID
	msg.Timestamp = now
	res, err := tx.Exec(
		"INSERT INTO messages (conversation_id, role, content, timestamp, source) VALUES (?, ?, ?, ?, ?)",
		msg.ConversationID, msg.Role, msg.Content, msg.Timestamp, msg.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	msg.ID, _ = res.LastInsertId()

	if _, err = tx.Exec("UPDATE conversations SET updated_at = ? WHERE id = ?", now, convID); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) DeleteConversation(sessionID string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM conversations WHERE session_id = ?", sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete conversation: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (s *SQLiteStore) ListSessions() ([]SessionSummary, error) {
	rows, err := s.db.Query(`
        SELECT c.session_id, c.user_id, c.created_at, c.updated_at, COUNT(m.id)
        FROM conversations c
        LEFT JOIN messages m ON m.conversation_id = c.id
        GROUP BY c.id
        ORDER BY c.updated_at DESC, c.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]SessionSummary, 0)
	for rows.Next() {
		var sum SessionSummary
		var userID sql.NullString
		if err := rows.Scan(&sum.SessionID, &userID, &sum.CreatedAt, &sum.UpdatedAt, &sum.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		if userID.Valid {
			sum.UserID = &userID.String
		}
		sessions = append(sessions, sum)
	}
	return sessions, rows.Err()
}

// Message methods

func (s *SQLiteStore) GetMessagesByConversationID(conversationID int64) ([]Message, error) {
	// Ordered by id, which is the insertion order. Timestamps alone can
	// tie when messages arrive within the same clock tick.
	rows, err := s.db.Query(
		"SELECT id, conversation_id, role, content, timestamp, feedback, feedback_comment, source FROM messages WHERE conversation_id = ? ORDER BY id ASC",
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (s *SQLiteStore) UpdateMessageFeedback(messageID int64, feedback string, comment *string) (bool, error) {
	res, err := s.db.Exec(
		"UPDATE messages SET feedback = ?, feedback_comment = ? WHERE id = ?",
		feedback, comment, messageID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update feedback: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (s *SQLiteStore) ListMessagesWithFeedback() ([]Message, error) {
	rows, err := s.db.Query(
		"SELECT id, conversation_id, role, content, timestamp, feedback, feedback_comment, source FROM messages WHERE feedback IS NOT NULL ORDER BY id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	messages := make([]Message, 0)
	for rows.Next() {
		var msg Message
		var feedback, comment, source sql.NullString
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.Timestamp, &feedback, &comment, &source); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		if feedback.Valid {
			msg.Feedback = &feedback.String
		}
		if comment.Valid {
			msg.FeedbackComment = &comment.String
		}
		if source.Valid {
			msg.Source = &source.String
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Aggregate methods

func (s *SQLiteStore) CountConversations() (int, error) {
	return s.countRows("SELECT COUNT(*) FROM conversations")
}

func (s *SQLiteStore) CountMessages() (int, error) {
	return s.countRows("SELECT COUNT(*) FROM messages")
}

// CountDistinctUsers counts distinct non-null user_id values; conversations
// without a user contribute nothing.
func (s *SQLiteStore) CountDistinctUsers() (int, error) {
	return s.countRows("SELECT COUNT(DISTINCT user_id) FROM conversations")
}

func (s *SQLiteStore) CountMessagesByFeedback(feedback string) (int, error) {
	return s.countRows("SELECT COUNT(*) FROM messages WHERE feedback = ?", feedback)
}

func (s *SQLiteStore) countRows(query string, args ...interface{}) (int, error) {
	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) RecentActivity(limit int) ([]SessionActivity, error) {
	rows, err := s.db.Query(`
        SELECT c.session_id, c.updated_at, COUNT(m.id)
        FROM conversations c
        LEFT JOIN messages m ON m.conversation_id = c.id
        GROUP BY c.id
        ORDER BY c.updated_at DESC, c.id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activity: %w", err)
	}
	defer rows.Close()

	activity := make([]SessionActivity, 0)
	for rows.Next() {
		var entry SessionActivity
		if err := rows.Scan(&entry.SessionID, &entry.UpdatedAt, &entry.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		activity = append(activity, entry)
	}
	return activity, rows.Err()
}

// TrainingDocument methods

func (s *SQLiteStore) CreateTrainingDocument(doc *TrainingDocument) error {
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(
		"INSERT INTO training_documents (title, content, file_type, file_path, uploaded_at, processed, chunk_count, category, tags) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		doc.Title, doc.Content, doc.FileType, doc.FilePath, doc.UploadedAt, doc.Processed, doc.ChunkCount, doc.Category, string(tagsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert training document: %w", err)
	}
	doc.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) ListTrainingDocuments() ([]TrainingDocument, error) {
	rows, err := s.db.Query(
		"SELECT id, title, content, file_type, file_path, uploaded_at, processed, chunk_count, category, tags FROM training_documents ORDER BY uploaded_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query training documents: %w", err)
	}
	defer rows.Close()

	docs := make([]TrainingDocument, 0)
	for rows.Next() {
		var doc TrainingDocument
		var fileType, filePath, category, tagsJSON sql.NullString
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &fileType, &filePath, &doc.UploadedAt, &doc.Processed, &doc.ChunkCount, &category, &tagsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		if fileType.Valid {
			doc.FileType = &fileType.String
		}
		if filePath.Valid {
			doc.FilePath = &filePath.String
		}
		if category.Valid {
			doc.Category = &category.String
		}
		if tagsJSON.Valid && tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &doc.Tags); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tags for document %d: %w", doc.ID, err)
			}
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStore) CountTrainingDocuments() (total int, processed int, err error) {
	err = s.db.QueryRow(
		"SELECT COUNT(*), COUNT(CASE WHEN processed THEN 1 END) FROM training_documents",
	).Scan(&total, &processed)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count training documents: %w", err)
	}
	return total, processed, nil
}

// UserPreference methods

func (s *SQLiteStore) UpsertUserPreference(pref *UserPreference) error {
	interestsJSON, err := json.Marshal(pref.Interests)
	if err != nil {
		return fmt.Errorf("failed to marshal interests: %w", err)
	}
	if pref.Language == "" {
		pref.Language = "en"
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(`
        INSERT INTO user_preferences (user_id, preferred_name, language, tone_preference, interests, conversation_summary, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            preferred_name = excluded.preferred_name,
            language = excluded.language,
            tone_preference = excluded.tone_preference,
            interests = excluded.interests,
            conversation_summary = excluded.conversation_summary,
            updated_at = excluded.updated_at`,
		pref.UserID, pref.PreferredName, pref.Language, pref.TonePreference, string(interestsJSON), pref.ConversationSummary, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user preference: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserPreference(userID string) (*UserPreference, error) {
	var pref UserPreference
	var preferredName, tonePreference, interestsJSON, summary sql.NullString
	err := s.db.QueryRow(
		"SELECT id, user_id, preferred_name, language, tone_preference, interests, conversation_summary, created_at, updated_at FROM user_preferences WHERE user_id = ?",
		userID,
	).Scan(&pref.ID, &pref.UserID, &preferredName, &pref.Language, &tonePreference, &interestsJSON, &summary, &pref.CreatedAt, &pref.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Preference not found
		}
		return nil, fmt.Errorf("failed to query user preference: %w", err)
	}
	if preferredName.Valid {
		pref.PreferredName = &preferredName.String
	}
	if tonePreference.Valid {
		pref.TonePreference = &tonePreference.String
	}
	if summary.Valid {
		pref.ConversationSummary = &summary.String
	}
	if interestsJSON.Valid && interestsJSON.String != "" {
		if err := json.Unmarshal([]byte(interestsJSON.String), &pref.Interests); err != nil {
			return nil, fmt.Errorf("failed to unmarshal interests for user %s: %w", userID, err)
		}
	}
	return &pref, nil
}
