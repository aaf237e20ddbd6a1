package ragbot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/Hmv123/ragbot/pkg/authz"
)

type SessionID struct{ uuid.UUID }

func NewSessionID() SessionID {
	return SessionID{uuid.Must(uuid.NewV4())}
}

type Session struct {
	ID       SessionID
	AuthorID AuthorID
	Title    string
	Created  Time
	Updated  Time
}

type MessageID struct{ uuid.UUID }

func NewMessageID() MessageID {
	return MessageID{uuid.Must(uuid.NewV4())}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	ID        MessageID
	SessionID SessionID
	Role      Role
	Content   string
	Created   Time
}

// Answer is the generated response together with the documents that were
// retrieved as context for it.
type Answer struct {
	Text      string
	Documents []Document
}

func (rb *ragBot) CreateSession(ctx context.Context, principal authz.Principal, title string) (*Session, error) {
	if title == "" {
		title = "New chat"
	}

	aSession := &Session{
		ID:       NewSessionID(),
		AuthorID: AuthorID{principal.ID().UUID},
		Title:    title,
		Created:  Time{rb.now()},
		Updated:  Time{rb.now()},
	}

	if err := rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		if err := rb.store.SavePrincipal(ctx, principal); err != nil {
			return fmt.Errorf("error saving principal: %w", err)
		}
		return rb.store.SaveSessions(ctx, aSession)
	}); err != nil {
		return nil, err
	}

	return aSession, nil
}

func (rb *ragBot) ListSessions(ctx context.Context, principal authz.Principal) ([]*Session, error) {
	var sessions []*Session
	if err := rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		var err error
		sessions, err = rb.store.ListSessions(ctx, rb.sessionPartial(), SortParams{
			By:    `s."updated"`,
			Order: SortOrderDesc,
		})
		return err
	}); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (rb *ragBot) FindSession(ctx context.Context, principal authz.Principal, id SessionID) (*Session, error) {
	var aSession *Session
	if err := rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		var err error
		aSession, err = rb.store.FindSession(ctx, id, rb.sessionPartial())
		return err
	}); err != nil {
		return nil, err
	}
	return aSession, nil
}

func (rb *ragBot) ListSessionMessages(ctx context.Context, principal authz.Principal, id SessionID) ([]Message, error) {
	var messages []Message
	if err := rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		if _, err := rb.store.FindSession(ctx, id, rb.sessionPartial()); err != nil {
			return err
		}
		var err error
		messages, err = rb.store.ListMessages(ctx, id, SortParams{
			By:    `m."created"`,
			Order: SortOrderAsc,
		})
		return err
	}); err != nil {
		return nil, err
	}
	return messages, nil
}

// Ask runs the full question pipeline within a chat session: embed the
// question, retrieve the closest documents, generate an answer from history
// plus retrieved context and record both turns on the session.
func (rb *ragBot) Ask(ctx context.Context, principal authz.Principal, id SessionID, question string, fileIDs ...FileID) (Answer, error) {
	if question == "" {
		return Answer{}, fmt.Errorf("empty question")
	}

	fileIDMap := map[FileID]struct{}{}
	for _, fileID := range fileIDs {
		fileIDMap[fileID] = struct{}{}
	}
	if len(fileIDMap) < len(fileIDs) {
		return Answer{}, fmt.Errorf("duplicate file IDs provided")
	}

	var (
		aSession *Session
		history  []Message
	)
	if err := rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		var err error
		aSession, err = rb.store.FindSession(ctx, id, rb.sessionPartial())
		if err != nil {
			return err
		}

		// Check all file IDs exist and that they have been processed.
		for _, fileID := range fileIDs {
			aFile, err := rb.store.FindFile(ctx, fileID, rb.filePartial())
			if err != nil {
				return fmt.Errorf("error finding file: %w", err)
			}
			if aFile.Status != FileStatusProcessedSuccessfully {
				return fmt.Errorf("file not processed: %s", fileID)
			}
		}

		history, err = rb.store.ListMessages(ctx, id, SortParams{
			By:    `m."created"`,
			Order: SortOrderAsc,
		})
		return err
	}); err != nil {
		return Answer{}, err
	}

	rb.logger.Sugar().Infof("generating answer for question: %s", question)

	documents := rb.retrieve(ctx, question, fileIDs)

	answer, err := rb.generative.Generate(ctx, question, history, documents)
	if err != nil {
		return Answer{}, fmt.Errorf("calling generative model: %w", err)
	}

	now := Time{rb.now()}
	userTurn := Message{
		ID:        NewMessageID(),
		SessionID: aSession.ID,
		Role:      RoleUser,
		Content:   question,
		Created:   now,
	}
	assistantTurn := Message{
		ID:        NewMessageID(),
		SessionID: aSession.ID,
		Role:      RoleAssistant,
		Content:   answer.Text,
		Created:   Time{now.T.Add(1)}, // keep ordering stable within the turn
	}

	if err := rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		if err := rb.store.SaveMessages(ctx, userTurn, assistantTurn); err != nil {
			return fmt.Errorf("save messages: %w", err)
		}
		aSession.Updated = now
		return rb.store.SaveSessions(ctx, aSession)
	}); err != nil {
		return Answer{}, err
	}

	return answer, nil
}

// retrieve embeds the question and searches the index for the closest
// documents. Retrieval failures degrade to an empty context rather than
// failing the whole question.
func (rb *ragBot) retrieve(ctx context.Context, question string, fileIDs []FileID) []Document {
	vector, err := rb.embedder.EmbedContent(ctx, question)
	if err != nil {
		rb.logger.Sugar().Error("embedding question: ", err)
		return nil
	}

	documents, err := rb.retriever.SearchDocuments(ctx, DocumentFilter{
		Vector:  vector,
		FileIDs: fileIDs,
	}, rb.topK)
	if err != nil {
		rb.logger.Sugar().Error("searching documents: ", err)
		return nil
	}

	rb.logger.Sugar().Infof("retrieved %d documents", len(documents))

	return documents
}
