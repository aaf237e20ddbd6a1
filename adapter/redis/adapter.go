package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Adapter struct {
	client               *redis.Client
	indexName            string
	indexPrefix          string
	dialectVersion       int
	vectorDim            int
	vectorDistanceMetric string
	logger               *zap.Logger
}

type Option func(*Adapter)

const (
	defaultIndexName            = "vector-idx"
	defaultIndexPrefix          = "doc:"
	defaultDialectVersion       = 2
	defaultVectorDim            = 3072
	defaultVectorDistanceMetric = "COSINE"
)

func New(ctx context.Context, client *redis.Client, options ...Option) (*Adapter, error) {
	a := &Adapter{
		client:               client,
		indexPrefix:          defaultIndexPrefix,
		indexName:            defaultIndexName,
		dialectVersion:       defaultDialectVersion,
		vectorDim:            defaultVectorDim,
		vectorDistanceMetric: defaultVectorDistanceMetric,
		logger:               zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	// Append vector dim to index name to allow multiple indexes with different
	// dimensions, e.g. text-embedding-3-large produces 3072-dimensional vectors
	// while text-embedding-ada-002 produces 1536-dimensional ones.
	a.indexName = fmt.Sprintf("%s_dim%d", a.indexName, a.vectorDim)

	a.logger.Sugar().Infow("init redis adapter",
		"index_name", a.indexName,
		"prefix", a.indexPrefix,
		"dialect_version", a.dialectVersion,
		"vector_dim", a.vectorDim,
		"vector_distance_metric", a.vectorDistanceMetric,
	)

	return a, a.init(ctx)
}

func WithIndexName(indexName string) Option {
	return func(a *Adapter) {
		a.indexName = indexName
	}
}

func WithIndexPrefix(prefix string) Option {
	return func(a *Adapter) {
		a.indexPrefix = prefix
	}
}

func WithDialectVersion(version int) Option {
	return func(a *Adapter) {
		a.dialectVersion = version
	}
}

func WithVectorDim(dim int) Option {
	return func(a *Adapter) {
		a.vectorDim = dim
	}
}

func WithVectorDistanceMetric(metric string) Option {
	return func(a *Adapter) {
		a.vectorDistanceMetric = metric
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const adapterName = "redis"

func (a *Adapter) Name() string {
	return adapterName
}

func (a *Adapter) init(ctx context.Context) error {
	indexes, err := a.client.FT_List(ctx).Result()
	if err != nil {
		return err
	}
	for _, existingIndex := range indexes {
		if existingIndex == a.indexName {
			a.logger.Sugar().Infow("redis index already exists", "index_name", a.indexName)
			return nil
		}
	}
	return a.createIndex(ctx)
}

// Recreate drops the index together with all indexed documents and creates
// it again from scratch.
func (a *Adapter) Recreate(ctx context.Context) error {
	indexes, err := a.client.FT_List(ctx).Result()
	if err != nil {
		return err
	}
	for _, existingIndex := range indexes {
		if existingIndex == a.indexName {
			if err := a.dropIndex(ctx); err != nil {
				return err
			}
			break
		}
	}
	return a.createIndex(ctx)
}

func (a *Adapter) dropIndex(ctx context.Context) error {
	_, err := a.client.FTDropIndexWithArgs(ctx,
		a.indexName,
		&redis.FTDropIndexOptions{
			DeleteDocs: true,
		},
	).Result()
	if err != nil {
		return err
	}
	a.logger.Sugar().Infow("dropped redis index", "index_name", a.indexName)
	return nil
}

func (a *Adapter) createIndex(ctx context.Context) error {
	_, err := a.client.FTCreate(ctx,
		a.indexName,
		&redis.FTCreateOptions{
			OnHash: true,
			Prefix: []any{a.indexPrefix},
		},
		&redis.FieldSchema{
			FieldName: "content",
			FieldType: redis.SearchFieldTypeText,
		},
		&redis.FieldSchema{
			FieldName: "file_id",
			FieldType: redis.SearchFieldTypeTag,
		},
		&redis.FieldSchema{
			FieldName: "page",
			FieldType: redis.SearchFieldTypeTag,
		},
		&redis.FieldSchema{
			FieldName: "source",
			FieldType: redis.SearchFieldTypeText,
		},
		&redis.FieldSchema{
			FieldName: "embedding",
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{
				HNSWOptions: &redis.FTHNSWOptions{
					Dim:            a.vectorDim,
					DistanceMetric: a.vectorDistanceMetric, // "COSINE", "IP", "L2"
					Type:           "FLOAT32",
				},
			},
		},
	).Result()
	if err != nil {
		return fmt.Errorf("error creating redis index: %v", err)
	}
	a.logger.Sugar().Infow("created redis index", "index_name", a.indexName)
	return nil
}
