package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Hmv123/ragbot"
)

func (a *Adapter) SaveDocuments(ctx context.Context, documents []ragbot.Document, vectors []ragbot.Vector) error {
	if len(documents) != len(vectors) {
		return fmt.Errorf("documents and vectors must have the same length")
	}

	for i, vector := range vectors {
		key := fmt.Sprintf("%s%v", a.indexPrefix, uuid.Must(uuid.NewV4()))
		fields, err := a.client.HSet(ctx,
			key,
			map[string]any{
				"content":   documents[i].Content,
				"file_id":   documents[i].FileID.String(),
				"page":      documents[i].Page,
				"source":    documents[i].Source,
				"embedding": floatsToBytes(vector),
			},
		).Result()
		if fields == 0 {
			return fmt.Errorf("no fields were added to redis")
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (a *Adapter) ListFileDocuments(ctx context.Context, id ragbot.FileID, limit int) ([]ragbot.Document, error) {
	query := fmt.Sprintf("@file_id:{%s}", escapeUUID(id.UUID))

	results, err := a.client.FTSearchWithArgs(ctx,
		a.indexName,
		query,
		&redis.FTSearchOptions{
			Return: []redis.FTSearchReturn{
				{FieldName: "content"},
				{FieldName: "file_id"},
				{FieldName: "page"},
				{FieldName: "source"},
			},
			DialectVersion: a.dialectVersion,
			Limit:          limit,
		},
	).Result()
	if err != nil {
		return nil, err
	}

	return mapRedisDocuments(results.Docs)
}

func (a *Adapter) DeleteFileDocuments(ctx context.Context, id ragbot.FileID) error {
	query := fmt.Sprintf("@file_id:{%s}", escapeUUID(id.UUID))

	results, err := a.client.FTSearchWithArgs(ctx,
		a.indexName,
		query,
		&redis.FTSearchOptions{
			NoContent:      true,
			DialectVersion: a.dialectVersion,
			Limit:          10000,
		},
	).Result()
	if err != nil {
		return err
	}
	if len(results.Docs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(results.Docs))
	for _, doc := range results.Docs {
		keys = append(keys, doc.ID)
	}

	deleted, err := a.client.Del(ctx, keys...).Result()
	if err != nil {
		return err
	}

	a.logger.Sugar().Infow("deleted file documents from redis",
		"file_id", id.String(),
		"deleted", deleted,
	)
	return nil
}

func escapeUUID(u uuid.UUID) string {
	return strings.ReplaceAll(u.String(), "-", "\\-")
}

func (a *Adapter) SearchDocuments(ctx context.Context, filter ragbot.DocumentFilter, limit int) ([]ragbot.Document, error) {
	if filter.Vector == nil {
		return nil, fmt.Errorf("vector is required for searching documents")
	}

	ids := make([]string, 0, len(filter.FileIDs))
	for _, fileID := range filter.FileIDs {
		ids = append(ids, escapeUUID(fileID.UUID))
	}
	fileIDFilter := strings.Join(ids, "|")

	var query string
	if fileIDFilter != "" {
		query += fmt.Sprintf("(@file_id:{%s})", fileIDFilter)
	} else {
		query += "*"
	}
	query += fmt.Sprintf("=>[KNN %d @embedding $vec AS vector_distance]", limit)

	// The results are ordered according to the value of the vector_distance
	// field, with the lowest distance indicating the greatest similarity to
	// the query.
	results, err := a.client.FTSearchWithArgs(ctx,
		a.indexName,
		query,
		&redis.FTSearchOptions{
			Return: []redis.FTSearchReturn{
				{FieldName: "vector_distance"},
				{FieldName: "content"},
				{FieldName: "file_id"},
				{FieldName: "page"},
				{FieldName: "source"},
			},
			DialectVersion: a.dialectVersion,
			Params: map[string]any{
				"vec": floatsToBytes(filter.Vector),
			},
			SortBy: []redis.FTSearchSortBy{{FieldName: "vector_distance", Asc: true}},
			Limit:  limit,
		},
	).Result()
	if err != nil {
		return nil, err
	}

	return mapRedisDocuments(results.Docs)
}

func mapRedisDocuments(rds []redis.Document) ([]ragbot.Document, error) {
	documents := make([]ragbot.Document, 0, len(rds))

	for _, rd := range rds {
		aDocument, err := mapRedisDocument(rd)
		if err != nil {
			return nil, err
		}
		documents = append(documents, aDocument)
	}

	return documents, nil
}

func mapRedisDocument(rd redis.Document) (ragbot.Document, error) {
	_, ok := rd.Fields["content"]
	if !ok {
		return ragbot.Document{}, fmt.Errorf("missing content field in document")
	}

	page, err := strconv.Atoi(rd.Fields["page"])
	if err != nil {
		return ragbot.Document{}, fmt.Errorf("invalid page number: %v", err)
	}

	fileID, err := uuid.FromString(rd.Fields["file_id"])
	if err != nil {
		return ragbot.Document{}, fmt.Errorf("invalid file_id: %v", err)
	}

	return ragbot.Document{
		FileID:  ragbot.FileID{UUID: fileID},
		Content: rd.Fields["content"],
		Page:    page,
		Source:  rd.Fields["source"],
	}, nil
}

// helper function to convert []float32 to []byte
func floatsToBytes(fs []float32) []byte {
	buf := make([]byte, len(fs)*4)

	for i, f := range fs {
		u := math.Float32bits(f)
		binary.NativeEndian.PutUint32(buf[i*4:], u)
	}

	return buf
}
