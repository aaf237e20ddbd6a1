package azureopenai

import (
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type Adapter struct {
	client          *openai.Client
	embeddingModel  string
	generativeModel string
	temperature     float32
	maxTokens       int
	logger          *zap.Logger
}

type Option func(*Adapter)

func WithEmbeddingModel(model string) Option {
	return func(a *Adapter) {
		a.embeddingModel = model
	}
}

func WithGenerativeModel(model string) Option {
	return func(a *Adapter) {
		a.generativeModel = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(a *Adapter) {
		a.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(a *Adapter) {
		a.maxTokens = maxTokens
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const (
	defaultEmbeddingModel  = "text-embedding-3-large"
	defaultGenerativeModel = "gpt-4o"
	defaultTemperature     = 0.2
	defaultMaxTokens       = 1000
)

func New(client *openai.Client, options ...Option) *Adapter {
	a := &Adapter{
		client:          client,
		embeddingModel:  defaultEmbeddingModel,
		generativeModel: defaultGenerativeModel,
		temperature:     defaultTemperature,
		maxTokens:       defaultMaxTokens,
		logger:          zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	a.logger.Sugar().With(
		"embedding model", a.embeddingModel,
		"generative model", a.generativeModel,
		"temperature", a.temperature,
		"max tokens", a.maxTokens,
	).Info("init azure openai adapter")

	return a
}

const adapterName = "azure-openai"

func (a *Adapter) Name() string {
	return adapterName
}
