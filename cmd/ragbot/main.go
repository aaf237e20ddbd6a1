package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

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
	"github.com/Hmv123/ragbot/adapter/rest"
	"github.com/Hmv123/ragbot/adapter/store"
	weaviateAdapter "github.com/Hmv123/ragbot/adapter/weaviate"
	"github.com/Hmv123/ragbot/pkg/logger"
)

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

	zapLogger, err := logger.New(viper.GetString("log.level"), viper.GetString("log.file"))
	if err != nil {
		log.Fatal("logger: ", err)
	}
	defer zapLogger.Sync()

	// Connect to the database
	zapLogger.Sugar().Info("connecting to db: ", viper.GetString("db.name"))
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=rwc&cache=shared", viper.GetString("db.name")))
	if err != nil {
		log.Fatal("db open: ", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatal("db ping: ", err)
	}

	// Run db migrations
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

	var (
		storeAdapter = store.New(db)
		rb           = ragbot.New(extractor, embedder, retriever, generative, storeAdapter,
			ragbot.WithTopK(viper.GetInt("chat.top_k")),
			ragbot.WithLogger(zapLogger),
		)
		restAdapter = rest.New(rb, rest.WithLogger(zapLogger))
		address     = viper.GetString("http.host") + ":" + viper.GetString("http.port")
	)

	httpServer := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       10 * time.Second,
		Addr:              address,
		Handler:           restAdapter.Handler(),
	}

	waitProcessing := rb.ProcessFiles(ctx)

	zapLogger.Sugar().Info("listening on ", address)

	go func() {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
		zapLogger.Sugar().Info("stopped serving new connections")
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cancel()
	waitProcessing()

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP shutdown error: %v", err)
	}
	zapLogger.Sugar().Info("graceful shutdown complete")
}

func initModels(ctx context.Context, zapLogger *zap.Logger) (ragbot.Embedder, ragbot.GenerativeModel, error) {
	switch viper.GetString("adapter.model.name") {
	case "azure-openai":
		zapLogger.Sugar().Info("model adapter: azure-openai")
		config := openai.DefaultAzureConfig(
			os.Getenv("AZURE_OPENAI_API_KEY"),
			viper.GetString("azure.endpoint"),
		)
		client := openai.NewClientWithConfig(config)
		adapter := azureopenai.New(client,
			azureopenai.WithEmbeddingModel(viper.GetString("adapter.model.embedding_model")),
			azureopenai.WithGenerativeModel(viper.GetString("adapter.model.generative_model")),
			azureopenai.WithLogger(zapLogger),
		)
		return adapter, adapter, nil
	case "google-genai":
		zapLogger.Sugar().Info("model adapter: google-genai")
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
		zapLogger.Sugar().Info("retrieve adapter: weaviate")
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
		zapLogger.Sugar().Info("retrieve adapter: redis")
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
