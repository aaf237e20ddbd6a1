package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
	"go.uber.org/zap"
)

type Adapter struct {
	client    *weaviate.Client
	className string
	logger    *zap.Logger
}

type Option func(*Adapter)

const defaultClassName = "Document"

func New(ctx context.Context, client *weaviate.Client, options ...Option) (*Adapter, error) {
	a := &Adapter{
		client:    client,
		className: defaultClassName,
		logger:    zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	return a, a.init(ctx)
}

func WithClassName(className string) Option {
	return func(a *Adapter) {
		a.className = className
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const adapterName = "weaviate"

func (a *Adapter) Name() string {
	return adapterName
}

// init creates the class (collection) in weaviate if it doesn't exist yet.
// Vectorizer is set to none as we compute embedding vectors ourselves.
func (a *Adapter) init(ctx context.Context) error {
	exists, err := a.client.Schema().ClassExistenceChecker().WithClassName(a.className).Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate error: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.Schema().ClassCreator().WithClass(a.class()).Do(ctx); err != nil {
		return fmt.Errorf("weaviate error: %w", err)
	}
	a.logger.Sugar().Infow("created weaviate class", "class", a.className)
	return nil
}

// Recreate drops the class together with all stored objects and creates it
// again from scratch.
func (a *Adapter) Recreate(ctx context.Context) error {
	exists, err := a.client.Schema().ClassExistenceChecker().WithClassName(a.className).Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate error: %w", err)
	}
	if exists {
		if err := a.client.Schema().ClassDeleter().WithClassName(a.className).Do(ctx); err != nil {
			return fmt.Errorf("weaviate error: %w", err)
		}
		a.logger.Sugar().Infow("deleted weaviate class", "class", a.className)
	}
	if err := a.client.Schema().ClassCreator().WithClass(a.class()).Do(ctx); err != nil {
		return fmt.Errorf("weaviate error: %w", err)
	}
	a.logger.Sugar().Infow("created weaviate class", "class", a.className)
	return nil
}

func (a *Adapter) class() *models.Class {
	return &models.Class{
		Class:      a.className,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "page", DataType: []string{"int"}},
			{Name: "file_id", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
		},
	}
}
