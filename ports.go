package ragbot

import (
	"context"
	"database/sql"
	"io"

	"github.com/Hmv123/ragbot/pkg/authz"
)

// Extractor turns PDF contents into documents, one per chunk of text.
type Extractor interface {
	Extract(ctx context.Context, fileName string, contents io.ReadSeeker) ([]Document, error)
}

// Embedder encodes document chunks and queries as vectors.
type Embedder interface {
	Name() string
	EmbedDocuments(ctx context.Context, documents []Document) ([]Vector, error)
	EmbedContent(ctx context.Context, content string) (Vector, error)
}

// Retriever stores document vectors in a search index and returns documents
// closest in vector space to an embedded query.
type Retriever interface {
	Name() string
	Recreate(ctx context.Context) error
	SaveDocuments(ctx context.Context, documents []Document, vectors []Vector) error
	ListFileDocuments(ctx context.Context, id FileID, limit int) ([]Document, error)
	SearchDocuments(ctx context.Context, filter DocumentFilter, limit int) ([]Document, error)
	DeleteFileDocuments(ctx context.Context, id FileID) error
}

// GenerativeModel answers a question from chat history plus retrieved context.
type GenerativeModel interface {
	Generate(ctx context.Context, question string, history []Message, documents []Document) (Answer, error)
}

type Store interface {
	Transactional
	FileStore
	ChatStore
}

type Transactional interface {
	Transactional(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error
}

type FileStore interface {
	SavePrincipal(ctx context.Context, principal authz.Principal) error
	SaveFiles(ctx context.Context, files ...*File) error
	ListFiles(ctx context.Context, filter FileFilter, partial authz.Partial, params SortParams) ([]*File, error)
	FindFile(ctx context.Context, id FileID, partial authz.Partial) (*File, error)
	DeleteFiles(ctx context.Context, files ...*File) error
}

type ChatStore interface {
	SaveSessions(ctx context.Context, sessions ...*Session) error
	ListSessions(ctx context.Context, partial authz.Partial, params SortParams) ([]*Session, error)
	FindSession(ctx context.Context, id SessionID, partial authz.Partial) (*Session, error)
	SaveMessages(ctx context.Context, messages ...Message) error
	ListMessages(ctx context.Context, id SessionID, params SortParams) ([]Message, error)
}
