package ragbot

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Hmv123/ragbot/pkg/authz"
)

var ErrNotFound = errors.New("not found")

const defaultTopK = 10

type clock func() time.Time

type ragBot struct {
	extractor  Extractor
	embedder   Embedder
	retriever  Retriever
	generative GenerativeModel
	store      Store
	now        clock
	topK       int
	logger     *zap.Logger
}

type Option func(*ragBot)

func WithTopK(topK int) Option {
	return func(rb *ragBot) {
		if topK > 0 {
			rb.topK = topK
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(rb *ragBot) {
		rb.logger = logger
	}
}

func WithClock(now clock) Option {
	return func(rb *ragBot) {
		rb.now = now
	}
}

func New(extractor Extractor, embedder Embedder, retriever Retriever, gm GenerativeModel, storeAdapter Store, options ...Option) *ragBot {
	rb := &ragBot{
		extractor:  extractor,
		embedder:   embedder,
		retriever:  retriever,
		generative: gm,
		store:      storeAdapter,
		now:        func() time.Time { return time.Now().UTC() },
		topK:       defaultTopK,
		logger:     zap.NewNop(),
	}

	for _, o := range options {
		o(rb)
	}

	return rb
}

// filePartial scopes file queries to the embedder/retriever pair this instance
// is configured with. Files embedded with a different model or stored in a
// different index are not visible.
func (rb *ragBot) filePartial() authz.Partial {
	return authz.FilterBy("embedder", rb.embedder.Name()).And("retriever", rb.retriever.Name())
}

func (rb *ragBot) sessionPartial() authz.Partial {
	return authz.NilPartial
}
