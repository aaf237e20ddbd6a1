package pdf

import (
	"fmt"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
)

type Adapter struct {
	tokenizer    *sentences.DefaultSentenceTokenizer
	chunkSize    int
	chunkOverlap int
	logger       *zap.Logger
}

type Option func(*Adapter)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 100
)

func WithChunkSize(size int) Option {
	return func(a *Adapter) {
		a.chunkSize = size
	}
}

func WithChunkOverlap(overlap int) Option {
	return func(a *Adapter) {
		a.chunkOverlap = overlap
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func New(options ...Option) (*Adapter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("error creating sentence tokenizer: %w", err)
	}

	a := &Adapter{
		tokenizer:    tokenizer,
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
		logger:       zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	if a.chunkOverlap >= a.chunkSize {
		return nil, fmt.Errorf("chunk overlap must be smaller than chunk size")
	}

	a.logger.Sugar().Infow("init pdf adapter",
		"chunk_size", a.chunkSize,
		"chunk_overlap", a.chunkOverlap,
	)

	return a, nil
}
