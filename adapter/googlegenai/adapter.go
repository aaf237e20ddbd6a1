package googlegenai

import (
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type Adapter struct {
	client          *genai.Client
	embeddingModel  string
	generativeModel string
	temperature     float32
	maxOutputTokens int32
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

func WithMaxOutputTokens(maxOutputTokens int32) Option {
	return func(a *Adapter) {
		a.maxOutputTokens = maxOutputTokens
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const (
	defaultEmbeddingModel  = "text-embedding-004"
	defaultGenerativeModel = "gemini-2.0-flash"
	defaultTemperature     = 0.2
	defaultMaxOutputTokens = 1000
)

func New(client *genai.Client, options ...Option) *Adapter {
	a := &Adapter{
		client:          client,
		embeddingModel:  defaultEmbeddingModel,
		generativeModel: defaultGenerativeModel,
		temperature:     defaultTemperature,
		maxOutputTokens: defaultMaxOutputTokens,
		logger:          zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	a.logger.Sugar().With(
		"embedding model", a.embeddingModel,
		"generative model", a.generativeModel,
		"temperature", a.temperature,
		"max output tokens", a.maxOutputTokens,
	).Info("init google genai adapter")

	return a
}

const adapterName = "google-genai"

func (a *Adapter) Name() string {
	return adapterName
}
