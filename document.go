package ragbot

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Hmv123/ragbot/pkg/authz"
)

type Vector []float32

// Document is a single chunk of text extracted from a file, the unit stored
// and retrieved from the vector index.
type Document struct {
	FileID  FileID `json:"file_id"`
	Content string `json:"content"`
	Page    int    `json:"page"`
	Source  string `json:"source"`
}

type DocumentFilter struct {
	Vector  Vector
	FileIDs []FileID
}

func (d Document) Sanitize() Document {
	d.Content = strings.TrimSpace(d.Content)
	d.Content = strings.Join(strings.Fields(d.Content), " ")
	return d
}

// ContextLine renders the document the way it appears in the LLM prompt,
// content followed by a source attribution line.
func (d Document) ContextLine() string {
	source := d.Source
	if source == "" && !d.FileID.IsNil() {
		source = d.FileID.String()
	}
	if source == "" {
		return d.Content
	}
	if d.Page > 0 {
		return fmt.Sprintf("%s\n(Source: %s, page %d)", d.Content, source, d.Page)
	}
	return fmt.Sprintf("%s\n(Source: %s)", d.Content, source)
}

// ContextText joins retrieved documents into the context block of the prompt.
func ContextText(documents []Document) string {
	lines := make([]string, 0, len(documents))
	for _, aDocument := range documents {
		lines = append(lines, aDocument.ContextLine())
	}
	return strings.Join(lines, "\n")
}

func (rb *ragBot) ListFileDocuments(ctx context.Context, principal authz.Principal, id FileID) ([]Document, error) {
	var documents []Document
	if err := rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		_, err := rb.store.FindFile(ctx, id, rb.filePartial())
		if err != nil {
			return err
		}

		documents, err = rb.retriever.ListFileDocuments(ctx, id, maxFileDocuments)
		if err != nil {
			return fmt.Errorf("list file documents: %w", err)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return documents, nil
}

const maxFileDocuments = 1000
