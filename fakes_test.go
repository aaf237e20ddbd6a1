package ragbot

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"

	"github.com/Hmv123/ragbot/pkg/authz"
)

type fakeStore struct {
	principals []authz.Principal
	files      map[FileID]*File
	sessions   map[SessionID]*Session
	messages   []Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		files:    map[FileID]*File{},
		sessions: map[SessionID]*Session{},
	}
}

func (s *fakeStore) Transactional(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *fakeStore) SavePrincipal(ctx context.Context, principal authz.Principal) error {
	s.principals = append(s.principals, principal)
	return nil
}

func (s *fakeStore) SaveFiles(ctx context.Context, files ...*File) error {
	for _, f := range files {
		s.files[f.ID] = f
	}
	return nil
}

func (s *fakeStore) ListFiles(ctx context.Context, filter FileFilter, partial authz.Partial, params SortParams) ([]*File, error) {
	files := make([]*File, 0, len(s.files))
	for _, f := range s.files {
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if !filter.LastUpdatedBefore.IsZero() && !f.Updated.Before(filter.LastUpdatedBefore) {
			continue
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Created.Before(files[j].Created)
	})
	return files, nil
}

func (s *fakeStore) FindFile(ctx context.Context, id FileID, partial authz.Partial) (*File, error) {
	f, ok := s.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f, nil
}

func (s *fakeStore) DeleteFiles(ctx context.Context, files ...*File) error {
	for _, f := range files {
		delete(s.files, f.ID)
	}
	return nil
}

func (s *fakeStore) SaveSessions(ctx context.Context, sessions ...*Session) error {
	for _, aSession := range sessions {
		s.sessions[aSession.ID] = aSession
	}
	return nil
}

func (s *fakeStore) ListSessions(ctx context.Context, partial authz.Partial, params SortParams) ([]*Session, error) {
	sessions := make([]*Session, 0, len(s.sessions))
	for _, aSession := range s.sessions {
		sessions = append(sessions, aSession)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[j].Updated.Before(sessions[i].Updated)
	})
	return sessions, nil
}

func (s *fakeStore) FindSession(ctx context.Context, id SessionID, partial authz.Partial) (*Session, error) {
	aSession, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return aSession, nil
}

func (s *fakeStore) SaveMessages(ctx context.Context, messages ...Message) error {
	s.messages = append(s.messages, messages...)
	return nil
}

func (s *fakeStore) ListMessages(ctx context.Context, id SessionID, params SortParams) ([]Message, error) {
	var messages []Message
	for _, m := range s.messages {
		if m.SessionID == id {
			messages = append(messages, m)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Created.Before(messages[j].Created)
	})
	return messages, nil
}

type fakeExtractor struct {
	documents []Document
	err       error
}

func (e *fakeExtractor) Extract(ctx context.Context, fileName string, contents io.ReadSeeker) ([]Document, error) {
	return e.documents, e.err
}

type fakeEmbedder struct {
	vector Vector
	// missing makes EmbedDocuments return that many vectors fewer than asked
	missing int
	err     error
}

func (e *fakeEmbedder) Name() string { return "fake-embedder" }

func (e *fakeEmbedder) EmbedDocuments(ctx context.Context, documents []Document) ([]Vector, error) {
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([]Vector, len(documents)-e.missing)
	for i := range vectors {
		vectors[i] = e.vector
	}
	return vectors, nil
}

func (e *fakeEmbedder) EmbedContent(ctx context.Context, content string) (Vector, error) {
	return e.vector, e.err
}

type fakeRetriever struct {
	documents []Document
	saved     []Document
	deleted   []FileID
	err       error
}

func (r *fakeRetriever) Name() string { return "fake-retriever" }

func (r *fakeRetriever) Recreate(ctx context.Context) error { return r.err }

func (r *fakeRetriever) SaveDocuments(ctx context.Context, documents []Document, vectors []Vector) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, documents...)
	return nil
}

func (r *fakeRetriever) ListFileDocuments(ctx context.Context, id FileID, limit int) ([]Document, error) {
	return r.documents, r.err
}

func (r *fakeRetriever) SearchDocuments(ctx context.Context, filter DocumentFilter, limit int) ([]Document, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(filter.Vector) == 0 {
		return nil, fmt.Errorf("missing vector")
	}
	return r.documents, nil
}

func (r *fakeRetriever) DeleteFileDocuments(ctx context.Context, id FileID) error {
	if r.err != nil {
		return r.err
	}
	r.deleted = append(r.deleted, id)
	return nil
}

type fakeGenerative struct {
	answer Answer
	err    error

	question  string
	history   []Message
	documents []Document
}

func (g *fakeGenerative) Generate(ctx context.Context, question string, history []Message, documents []Document) (Answer, error) {
	g.question = question
	g.history = history
	g.documents = documents
	if g.err != nil {
		return Answer{}, g.err
	}
	answer := g.answer
	answer.Documents = documents
	return answer, nil
}
