package ragbot

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hmv123/ragbot/pkg/authz"
)

var testPrincipal = authz.New(
	authz.ID{UUID: uuid.Must(uuid.FromString("0ca4e55a-14e3-4571-a2d5-a1b9e3b5c437"))},
	"test-user",
)

func testClock() clock {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func TestCreateSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	rb := New(&fakeExtractor{}, &fakeEmbedder{}, &fakeRetriever{}, &fakeGenerative{}, store, WithClock(testClock()))

	aSession, err := rb.CreateSession(context.Background(), testPrincipal, "")
	require.NoError(t, err)

	assert.Equal(t, "New chat", aSession.Title)
	assert.Equal(t, testPrincipal.ID().UUID, aSession.AuthorID.UUID)
	assert.False(t, aSession.Created.IsZero())

	require.Len(t, store.principals, 1)
	require.Len(t, store.sessions, 1)
}

func TestFindSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	rb := New(&fakeExtractor{}, &fakeEmbedder{}, &fakeRetriever{}, &fakeGenerative{}, store, WithClock(testClock()))

	aSession, err := rb.CreateSession(context.Background(), testPrincipal, "Test chat")
	require.NoError(t, err)

	found, err := rb.FindSession(context.Background(), testPrincipal, aSession.ID)
	require.NoError(t, err)
	assert.Equal(t, aSession, found)

	_, err = rb.FindSession(context.Background(), testPrincipal, NewSessionID())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAsk(t *testing.T) {
	t.Parallel()

	var (
		store     = newFakeStore()
		retrieved = []Document{
			{Content: "The ultimate answer is 42.", Page: 7, Source: "guide.pdf"},
		}
		generative = &fakeGenerative{answer: Answer{Text: "The answer is 42."}}
		rb         = New(
			&fakeExtractor{},
			&fakeEmbedder{vector: Vector{0.1, 0.2}},
			&fakeRetriever{documents: retrieved},
			generative,
			store,
			WithClock(testClock()),
		)
	)

	aSession, err := rb.CreateSession(context.Background(), testPrincipal, "Test chat")
	require.NoError(t, err)

	// Seed some history.
	require.NoError(t, store.SaveMessages(context.Background(),
		Message{
			ID:        NewMessageID(),
			SessionID: aSession.ID,
			Role:      RoleUser,
			Content:   "Hello",
			Created:   Time{testClock()().Add(-time.Minute)},
		},
	))

	answer, err := rb.Ask(context.Background(), testPrincipal, aSession.ID, "What is the answer?")
	require.NoError(t, err)

	assert.Equal(t, "The answer is 42.", answer.Text)
	assert.Equal(t, retrieved, answer.Documents)

	// The generative model saw the question, the history and the retrieved context.
	assert.Equal(t, "What is the answer?", generative.question)
	require.Len(t, generative.history, 1)
	assert.Equal(t, "Hello", generative.history[0].Content)
	assert.Equal(t, retrieved, generative.documents)

	// Both turns were recorded, the user turn first.
	messages, err := store.ListMessages(context.Background(), aSession.ID, SortParams{})
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, RoleUser, messages[1].Role)
	assert.Equal(t, "What is the answer?", messages[1].Content)
	assert.Equal(t, RoleAssistant, messages[2].Role)
	assert.Equal(t, "The answer is 42.", messages[2].Content)
	assert.True(t, messages[1].Created.Before(messages[2].Created))
}

func TestAskEmptyQuestion(t *testing.T) {
	t.Parallel()

	rb := New(&fakeExtractor{}, &fakeEmbedder{}, &fakeRetriever{}, &fakeGenerative{}, newFakeStore())

	_, err := rb.Ask(context.Background(), testPrincipal, NewSessionID(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty question")
}

func TestAskDuplicateFileIDs(t *testing.T) {
	t.Parallel()

	rb := New(&fakeExtractor{}, &fakeEmbedder{}, &fakeRetriever{}, &fakeGenerative{}, newFakeStore())

	fileID := NewFileID()
	_, err := rb.Ask(context.Background(), testPrincipal, NewSessionID(), "question", fileID, fileID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate file IDs")
}

func TestAskSessionNotFound(t *testing.T) {
	t.Parallel()

	rb := New(&fakeExtractor{}, &fakeEmbedder{}, &fakeRetriever{}, &fakeGenerative{}, newFakeStore())

	_, err := rb.Ask(context.Background(), testPrincipal, NewSessionID(), "question")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAskFileNotProcessed(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	rb := New(&fakeExtractor{}, &fakeEmbedder{}, &fakeRetriever{}, &fakeGenerative{}, store, WithClock(testClock()))

	aSession, err := rb.CreateSession(context.Background(), testPrincipal, "")
	require.NoError(t, err)

	aFile := &File{
		ID:     NewFileID(),
		Status: FileStatusProcessing,
	}
	require.NoError(t, store.SaveFiles(context.Background(), aFile))

	_, err = rb.Ask(context.Background(), testPrincipal, aSession.ID, "question", aFile.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not processed")
}

func TestAskRetrievalFailureDegradesToEmptyContext(t *testing.T) {
	t.Parallel()

	var (
		store      = newFakeStore()
		generative = &fakeGenerative{answer: Answer{Text: "I do not know."}}
		rb         = New(
			&fakeExtractor{},
			&fakeEmbedder{err: assert.AnError},
			&fakeRetriever{},
			generative,
			store,
			WithClock(testClock()),
		)
	)

	aSession, err := rb.CreateSession(context.Background(), testPrincipal, "")
	require.NoError(t, err)

	answer, err := rb.Ask(context.Background(), testPrincipal, aSession.ID, "question")
	require.NoError(t, err)

	assert.Equal(t, "I do not know.", answer.Text)
	assert.Empty(t, generative.documents)
}

func TestAskGenerationFailure(t *testing.T) {
	t.Parallel()

	var (
		store = newFakeStore()
		rb    = New(
			&fakeExtractor{},
			&fakeEmbedder{vector: Vector{0.1}},
			&fakeRetriever{},
			&fakeGenerative{err: assert.AnError},
			store,
			WithClock(testClock()),
		)
	)

	aSession, err := rb.CreateSession(context.Background(), testPrincipal, "")
	require.NoError(t, err)

	_, err = rb.Ask(context.Background(), testPrincipal, aSession.ID, "question")
	require.Error(t, err)

	// Nothing was recorded on the session.
	messages, err := store.ListMessages(context.Background(), aSession.ID, SortParams{})
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestListSessionMessagesSessionNotFound(t *testing.T) {
	t.Parallel()

	rb := New(&fakeExtractor{}, &fakeEmbedder{}, &fakeRetriever{}, &fakeGenerative{}, newFakeStore())

	_, err := rb.ListSessionMessages(context.Background(), testPrincipal, NewSessionID())
	require.ErrorIs(t, err, ErrNotFound)
}
