package azureopenai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Hmv123/ragbot"
)

func (a *Adapter) EmbedDocuments(ctx context.Context, documents []ragbot.Document) ([]ragbot.Vector, error) {
	// Use the batch embedding API to embed all documents at once.
	input := make([]string, 0, len(documents))
	for _, aDocument := range documents {
		input = append(input, aDocument.Content)
	}

	a.logger.Sugar().Infof("invoking embedding model with %d documents", len(documents))

	embedResponse, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: input,
		Model: openai.EmbeddingModel(a.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings error: %w", err)
	}

	if len(embedResponse.Data) != len(documents) {
		return nil, fmt.Errorf("embedded batch size mismatch")
	}

	vectors := make([]ragbot.Vector, 0, len(embedResponse.Data))
	for i := range embedResponse.Data {
		vectors = append(vectors, embedResponse.Data[i].Embedding)
	}

	return vectors, nil
}

func (a *Adapter) EmbedContent(ctx context.Context, content string) (ragbot.Vector, error) {
	embedResponse, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{content},
		Model: openai.EmbeddingModel(a.embeddingModel),
	})
	if err != nil {
		return ragbot.Vector{}, err
	}
	if len(embedResponse.Data) != 1 {
		return ragbot.Vector{}, fmt.Errorf("expected a single embedding, got %d", len(embedResponse.Data))
	}
	return embedResponse.Data[0].Embedding, nil
}
