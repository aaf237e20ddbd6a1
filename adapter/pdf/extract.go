package pdf

import (
	"context"
	"io"
	"strings"

	"github.com/Hmv123/ragbot"
)

// Extract parses the PDF contents and splits the text of each page into
// overlapping chunks of whole sentences. Each chunk becomes a document
// annotated with the page it came from.
func (a *Adapter) Extract(ctx context.Context, fileName string, contents io.ReadSeeker) ([]ragbot.Document, error) {
	pages, err := extractPageText(contents)
	if err != nil {
		return nil, err
	}

	documents := make([]ragbot.Document, 0, len(pages))

	for pageNo, page := range pages {
		text := strings.TrimSpace(page.String())
		if text == "" {
			continue
		}

		sentenceTexts := make([]string, 0, 100)
		for _, aSentence := range a.tokenizer.Tokenize(text) {
			trimmed := strings.TrimSpace(aSentence.Text)
			if trimmed == "" {
				continue
			}
			sentenceTexts = append(sentenceTexts, trimmed)
		}

		for _, chunk := range chunkSentences(sentenceTexts, a.chunkSize, a.chunkOverlap) {
			documents = append(documents, ragbot.Document{
				Content: chunk,
				Page:    pageNo + 1,
			})
		}
	}

	a.logger.Sugar().Infow("extracted documents from pdf",
		"file_name", fileName,
		"pages", len(pages),
		"documents", len(documents),
	)

	return documents, nil
}
