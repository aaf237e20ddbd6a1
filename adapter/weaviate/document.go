package weaviate

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/Hmv123/ragbot"
)

func (a *Adapter) SaveDocuments(ctx context.Context, documents []ragbot.Document, vectors []ragbot.Vector) error {
	if len(documents) != len(vectors) {
		return fmt.Errorf("documents and vectors must have the same length")
	}

	// Convert our documents - along with their embedding vectors - into types
	// used by the Weaviate client library.
	objects := make([]*models.Object, len(documents))
	for i, doc := range documents {
		if len(vectors[i]) == 0 {
			return fmt.Errorf("empty vector")
		}
		properties := map[string]any{
			"content": doc.Content,
			"page":    doc.Page,
			"source":  doc.Source,
		}
		if !doc.FileID.IsNil() {
			properties["file_id"] = doc.FileID.String()
		}
		objects[i] = &models.Object{
			Class:      a.className,
			Properties: properties,
			Vector:     models.C11yVector(vectors[i]),
		}
	}

	if _, err := a.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx); err != nil {
		return err
	}

	a.logger.Sugar().Infow("stored objects in weaviate", "count", len(objects))
	return nil
}

func (a *Adapter) SearchDocuments(ctx context.Context, filter ragbot.DocumentFilter, limit int) ([]ragbot.Document, error) {
	if filter.Vector == nil {
		return nil, fmt.Errorf("vector is required for searching documents")
	}

	gql := a.client.GraphQL()
	nearVector := gql.NearVectorArgBuilder().WithVector([]float32(filter.Vector))

	builder := gql.Get().
		WithNearVector(nearVector).
		WithClassName(a.className).
		WithFields(
			graphql.Field{Name: "content"},
			graphql.Field{Name: "page"},
			graphql.Field{Name: "file_id"},
			graphql.Field{Name: "source"},
		).
		WithLimit(limit)

	if len(filter.FileIDs) > 0 {
		where := filters.Where()
		where.WithOperator(filters.ContainsAny)
		where.WithPath([]string{"file_id"})
		where.WithValueString(fileIDsToStrings(filter.FileIDs)...)
		builder = builder.WithWhere(where)
	}

	graphqlResponse, err := builder.Do(ctx)
	if err := combinedWeaviateError(graphqlResponse, err); err != nil {
		return nil, err
	}

	return decodeGetDocumentResults(graphqlResponse, a.className)
}

func (a *Adapter) ListFileDocuments(ctx context.Context, id ragbot.FileID, limit int) ([]ragbot.Document, error) {
	gql := a.client.GraphQL()

	where := filters.Where()
	where.WithOperator(filters.Equal)
	where.WithPath([]string{"file_id"})
	where.WithValueString(id.String())

	graphqlResponse, err := gql.Get().
		WithClassName(a.className).
		WithFields(
			graphql.Field{Name: "content"},
			graphql.Field{Name: "page"},
			graphql.Field{Name: "file_id"},
			graphql.Field{Name: "source"},
		).
		WithWhere(where).
		WithLimit(limit).
		Do(ctx)
	if err := combinedWeaviateError(graphqlResponse, err); err != nil {
		return nil, err
	}

	return decodeGetDocumentResults(graphqlResponse, a.className)
}

func (a *Adapter) DeleteFileDocuments(ctx context.Context, id ragbot.FileID) error {
	where := filters.Where()
	where.WithOperator(filters.Equal)
	where.WithPath([]string{"file_id"})
	where.WithValueString(id.String())

	response, err := a.client.Batch().ObjectsBatchDeleter().
		WithClassName(a.className).
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return err
	}

	if response != nil && response.Results != nil {
		a.logger.Sugar().Infow("deleted file objects from weaviate",
			"file_id", id.String(),
			"matches", response.Results.Matches,
		)
	}
	return nil
}

func fileIDsToStrings(fileIDs []ragbot.FileID) []string {
	ids := make([]string, 0, len(fileIDs))
	for _, fileID := range fileIDs {
		ids = append(ids, fileID.String())
	}
	return ids
}

// decodeGetDocumentResults decodes the result returned by Weaviate's GraphQL
// Get query; these are returned as a nested map[string]any (just like JSON
// unmarshaled into a map[string]any).
func decodeGetDocumentResults(graphqlResponse *models.GraphQLResponse, className string) ([]ragbot.Document, error) {
	data, ok := graphqlResponse.Data["Get"]
	if !ok {
		return nil, fmt.Errorf("get key not found in result")
	}
	doc, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("get key unexpected type")
	}
	slc, ok := doc[className].([]any)
	if !ok {
		return nil, fmt.Errorf("%s is not a list of results", className)
	}

	var out []ragbot.Document
	for _, s := range slc {
		smap, ok := s.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid element in list of documents")
		}
		content, ok := smap["content"].(string)
		if !ok {
			return nil, fmt.Errorf("expected content in document")
		}
		page, ok := smap["page"].(float64)
		if !ok {
			return nil, fmt.Errorf("expected page in document")
		}
		id, ok := smap["file_id"].(string)
		if !ok {
			return nil, fmt.Errorf("expected file_id in document")
		}
		fileID, err := uuid.FromString(id)
		if err != nil {
			return nil, fmt.Errorf("invalid file_id in document: %w", err)
		}
		aDocument := ragbot.Document{
			Content: content,
			Page:    int(page),
			FileID:  ragbot.FileID{UUID: fileID},
		}
		if source, ok := smap["source"].(string); ok {
			aDocument.Source = source
		}
		out = append(out, aDocument)
	}
	return out, nil
}

// combinedWeaviateError generates an error if err is non-nil or result has
// errors, and returns an error (or nil if there's no error). It's useful for
// the results of the Weaviate GraphQL API's "Do" calls.
func combinedWeaviateError(graphqlResponse *models.GraphQLResponse, err error) error {
	if err != nil {
		return err
	}
	if len(graphqlResponse.Errors) != 0 {
		var ss []string
		for _, e := range graphqlResponse.Errors {
			ss = append(ss, e.Message)
		}
		return fmt.Errorf("weaviate error: %v", ss)
	}
	return nil
}
