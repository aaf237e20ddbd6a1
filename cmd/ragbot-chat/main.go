package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofrs/uuid/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/viper"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Hmv123/ragbot"
	"github.com/Hmv123/ragbot/adapter/azureopenai"
	googlegenai "github.com/Hmv123/ragbot/adapter/googlegenai"
	"github.com/Hmv123/ragbot/adapter/pdf"
	redisAdapter "github.com/Hmv123/ragbot/adapter/redis"
	"github.com/Hmv123/ragbot/adapter/store"
	weaviateAdapter "github.com/Hmv123/ragbot/adapter/weaviate"
	"github.com/Hmv123/ragbot/internal/tui"
	"github.com/Hmv123/ragbot/pkg/authz"
	"github.com/Hmv123/ragbot/pkg/logger"
)

// TODO: replace with authenticated principals once the server supports them.
var staticPrincipal = authz.New(
	authz.ID{UUID: uuid.Must(uuid.FromString("b486ea88-95c4-4140-86c9-dd19f6fa879f"))},
	"static-user",
)

// chatClient binds a chat session and principal to the TUI, which only ever
// sends questions.
type chatClient struct {
	ask func(ctx context.Context, question string) (ragbot.Answer, error)
}

func (c chatClient) Ask(ctx context.Context, question string) (ragbot.Answer, error) {
	return c.ask(ctx, question)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal("fatal error config file: ", err)
	}

	// Log to a file, the terminal belongs to the TUI.
	logFile := viper.GetString("log.file")
	if logFile == "" {
		logFile = "ragbot-chat.log"
	}
	zapLogger, err := logger.New(viper.GetString("log.level"), logFile)
	if err != nil {
		log.Fatal("logger: ", err)
	}
	defer zapLogger.Sync()

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=rwc&cache=shared", viper.GetString("db.name")))
	if err != nil {
		log.Fatal("db open: ", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatal("db ping: ", err)
	}

	if err := ragbot.Migrate(db, viper.GetString("db.migrations")); err != nil {
		log.Fatal("db migrate: ", err)
	}

	embedder, generative, err := initModels(ctx, zapLogger)
	if err != nil {
		log.Fatal(err)
	}

	retriever, err := initRetriever(ctx, zapLogger)
	if err != nil {
		log.Fatal(err)
	}

	extractor, err := pdf.New(pdf.WithLogger(zapLogger))
	if err != nil {
		log.Fatal("pdf adapter: ", err)
	}

	rb := ragbot.New(extractor, embedder, retriever, generative, store.New(db),
		ragbot.WithTopK(viper.GetInt("chat.top_k")),
		ragbot.WithLogger(zapLogger),
	)

	aSession, err := rb.CreateSession(ctx, staticPrincipal, "Terminal chat")
	if err != nil {
		log.Fatal("create session: ", err)
	}

	client := chatClient{
		ask: func(ctx context.Context, question string) (ragbot.Answer, error) {
			return rb.Ask(ctx, staticPrincipal, aSession.ID, question)
		},
	}

	p := tea.NewProgram(tui.New(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal("tui: ", err)
	}
}

func initModels(ctx context.Context, zapLogger *zap.Logger) (ragbot.Embedder, ragbot.GenerativeModel, error) {
	switch viper.GetString("adapter.model.name") {
	case "azure-openai":
		config := openai.DefaultAzureConfig(
			os.Getenv("AZURE_OPENAI_API_KEY"),
			viper.GetString("azure.endpoint"),
		)
		adapter := azureopenai.New(openai.NewClientWithConfig(config),
			azureopenai.WithEmbeddingModel(viper.GetString("adapter.model.embedding_model")),
			azureopenai.WithGenerativeModel(viper.GetString("adapter.model.generative_model")),
			azureopenai.WithLogger(zapLogger),
		)
		return adapter, adapter, nil
	case "google-genai":
		// The client gets the API key from the environment variable `GEMINI_API_KEY`.
		client, err := genai.NewClient(ctx, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("genai client: %w", err)
		}
		adapter := googlegenai.New(client,
			googlegenai.WithEmbeddingModel(viper.GetString("adapter.model.embedding_model")),
			googlegenai.WithGenerativeModel(viper.GetString("adapter.model.generative_model")),
			googlegenai.WithLogger(zapLogger),
		)
		return adapter, adapter, nil
	default:
		return nil, nil, fmt.Errorf("unknown model adapter: %s", viper.GetString("adapter.model.name"))
	}
}

func initRetriever(ctx context.Context, zapLogger *zap.Logger) (ragbot.Retriever, error) {
	switch viper.GetString("adapter.retrieve.name") {
	case "weaviate":
		client, err := weaviate.NewClient(weaviate.Config{
			Host:   viper.GetString("weaviate.host"),
			Scheme: viper.GetString("weaviate.scheme"),
		})
		if err != nil {
			return nil, fmt.Errorf("weaviate client: %w", err)
		}
		return weaviateAdapter.New(ctx, client,
			weaviateAdapter.WithClassName(viper.GetString("weaviate.class")),
			weaviateAdapter.WithLogger(zapLogger),
		)
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			Protocol: viper.GetInt("redis.protocol"),
		})
		return redisAdapter.New(ctx, rdb,
			redisAdapter.WithIndexName(viper.GetString("redis.index")),
			redisAdapter.WithIndexPrefix(viper.GetString("redis.index_prefix")),
			redisAdapter.WithDialectVersion(viper.GetInt("redis.dialect")),
			redisAdapter.WithVectorDim(viper.GetInt("redis.vector_dim")),
			redisAdapter.WithVectorDistanceMetric(viper.GetString("redis.vector_distance_metric")),
			redisAdapter.WithLogger(zapLogger),
		)
	default:
		return nil, fmt.Errorf("unknown retrieve adapter: %s", viper.GetString("adapter.retrieve.name"))
	}
}
