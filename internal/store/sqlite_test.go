package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	s, err := NewSQLiteStore(dsn)
	require.NoError(t, err, "failed to create sqlite store")

	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func strPtr(s string) *string { return &s }

func appendTestMessage(t *testing.T, s *SQLiteStore, sessionID string, userID *string, role, content string) *Message {
	t.Helper()
	msg := &Message{Role: role, Content: content, Source: strPtr("user_input")}
	require.NoError(t, s.AppendMessage(sessionID, userID, msg))
	return msg
}

func TestAppendMessageCreatesConversationOnce(t *testing.T) {
	s := newTestStore(t)

	appendTestMessage(t, s, "sess-1", strPtr("alice"), "user", "hi")
	appendTestMessage(t, s, "sess-1", nil, "assistant", "hello back")

	count, err := s.CountConversations()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	msgs, err := s.CountMessages()
	require.NoError(t, err)
	assert.Equal(t, 2, msgs)

	// The resumed append must not overwrite the original user binding.
	conv, err := s.GetConversationBySessionID("sess-1")
	require.NoError(t, err)
	require.NotNil(t, conv)
	require.NotNil(t, conv.UserID)
	assert.Equal(t, "alice", *conv.UserID)
	assert.False(t, conv.UpdatedAt.Before(conv.CreatedAt))
}

func TestAppendMessageConcurrentSameSession(t *testing.T) {
	s := newTestStore(t)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			msg := &Message{Role: "user", Content: fmt.Sprintf("msg %d", n)}
			errs <- s.AppendMessage("race-session", nil, msg)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	count, err := s.CountConversations()
	require.NoError(t, err)
	assert.Equal(t, 1, count, "concurrent appends must create exactly one conversation")

	conv, err := s.GetConversationBySessionID("race-session")
	require.NoError(t, err)
	require.NotNil(t, conv)

	msgs, err := s.GetMessagesByConversationID(conv.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, writers)
}

func TestGetConversationBySessionIDMissing(t *testing.T) {
	s := newTestStore(t)

	conv, err := s.GetConversationBySessionID("nope")
	require.NoError(t, err)
	assert.Nil(t, conv)
}

func TestMessagesReturnedInInsertionOrder(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		appendTestMessage(t, s, "sess-ord", nil, "user", fmt.Sprintf("m%d", i))
	}

	conv, err := s.GetConversationBySessionID("sess-ord")
	require.NoError(t, err)
	require.NotNil(t, conv)

	msgs, err := s.GetMessagesByConversationID(conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	for i, msg := range msgs {
		assert.Equal(t, fmt.Sprintf("m%d", i), msg.Content)
		if i > 0 {
			assert.False(t, msg.Timestamp.Before(msgs[i-1].Timestamp))
		}
	}
}

func TestUpdateMessageFeedbackOverwrites(t *testing.T) {
	s := newTestStore(t)

	msg := appendTestMessage(t, s, "sess-fb", nil, "assistant", "an answer")

	found, err := s.UpdateMessageFeedback(msg.ID, "positive", strPtr("nice"))
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.UpdateMessageFeedback(msg.ID, "negative", nil)
	require.NoError(t, err)
	assert.True(t, found)

	rated, err := s.ListMessagesWithFeedback()
	require.NoError(t, err)
	require.Len(t, rated, 1)
	require.NotNil(t, rated[0].Feedback)
	assert.Equal(t, "negative", *rated[0].Feedback)
	assert.Nil(t, rated[0].FeedbackComment, "comment must be replaced, not kept")
}

func TestUpdateMessageFeedbackUnknownID(t *testing.T) {
	s := newTestStore(t)

	found, err := s.UpdateMessageFeedback(9999, "positive", nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListSessionsMostRecentFirst(t *testing.T) {
	s := newTestStore(t)

	appendTestMessage(t, s, "first", strPtr("alice"), "user", "a")
	time.Sleep(2 * time.Millisecond)
	appendTestMessage(t, s, "second", nil, "user", "b")
	time.Sleep(2 * time.Millisecond)
	appendTestMessage(t, s, "first", nil, "user", "c")

	sessions, err := s.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "first", sessions[0].SessionID, "re-activated session moves to the front")
	assert.Equal(t, 2, sessions[0].MessageCount)
	assert.Equal(t, "second", sessions[1].SessionID)
	assert.Equal(t, 1, sessions[1].MessageCount)
}

func TestDeleteConversationCascades(t *testing.T) {
	s := newTestStore(t)

	appendTestMessage(t, s, "doomed", nil, "user", "bye")
	appendTestMessage(t, s, "doomed", nil, "assistant", "bye bye")

	deleted, err := s.DeleteConversation("doomed")
	require.NoError(t, err)
	assert.True(t, deleted)

	msgs, err := s.CountMessages()
	require.NoError(t, err)
	assert.Equal(t, 0, msgs, "messages must be removed with their conversation")

	deleted, err = s.DeleteConversation("doomed")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCountDistinctUsersIgnoresNull(t *testing.T) {
	s := newTestStore(t)

	appendTestMessage(t, s, "s1", strPtr("alice"), "user", "x")
	appendTestMessage(t, s, "s2", strPtr("alice"), "user", "x")
	appendTestMessage(t, s, "s3", strPtr("bob"), "user", "x")
	appendTestMessage(t, s, "s4", nil, "user", "x")

	convs, err := s.CountConversations()
	require.NoError(t, err)
	assert.Equal(t, 4, convs)

	users, err := s.CountDistinctUsers()
	require.NoError(t, err)
	assert.Equal(t, 2, users)
}

func TestRecentActivityLimit(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 7; i++ {
		appendTestMessage(t, s, fmt.Sprintf("sess-%d", i), nil, "user", "hi")
		time.Sleep(time.Millisecond)
	}

	activity, err := s.RecentActivity(5)
	require.NoError(t, err)
	require.Len(t, activity, 5)
	assert.Equal(t, "sess-6", activity[0].SessionID)
	assert.Equal(t, 1, activity[0].MessageCount)
}

func TestTrainingDocumentCountsAndOrder(t *testing.T) {
	s := newTestStore(t)

	older := &TrainingDocument{
		Title:      "FAQ",
		Content:    "questions and answers",
		FileType:   strPtr("md"),
		Processed:  true,
		ChunkCount: 12,
		UploadedAt: time.Now().UTC().Add(-time.Hour),
		Tags:       []string{"faq", "support"},
	}
	require.NoError(t, s.CreateTrainingDocument(older))

	newer := &TrainingDocument{Title: "Manual", Content: "long manual text"}
	require.NoError(t, s.CreateTrainingDocument(newer))

	total, processed, err := s.CountTrainingDocuments()
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, processed)

	docs, err := s.ListTrainingDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Manual", docs[0].Title, "newest upload first")
	assert.Equal(t, []string{"faq", "support"}, docs[1].Tags)
}

func TestUserPreferenceRoundTrip(t *testing.T) {
	s := newTestStore(t)

	pref := &UserPreference{
		UserID:         "alice",
		PreferredName:  strPtr("Ali"),
		TonePreference: strPtr("casual"),
		Interests:      []string{"go", "chess"},
	}
	require.NoError(t, s.UpsertUserPreference(pref))

	got, err := s.GetUserPreference("alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, []string{"go", "chess"}, got.Interests)
	require.NotNil(t, got.PreferredName)
	assert.Equal(t, "Ali", *got.PreferredName)

	// Second upsert replaces, keyed by user_id.
	pref.Interests = []string{"cooking"}
	pref.Language = "de"
	require.NoError(t, s.UpsertUserPreference(pref))

	got, err = s.GetUserPreference("alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "de", got.Language)
	assert.Equal(t, []string{"cooking"}, got.Interests)

	missing, err := s.GetUserPreference("nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
