package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
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
	weaviateAdapter "github.com/Hmv123/ragbot/adapter/weaviate"
	"github.com/Hmv123/ragbot/pkg/logger"
)

const ingestFileTimeout = 5 * time.Minute

// Ingests local PDF files straight into the vector search index, bypassing
// the HTTP server and the file metadata store.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = godotenv.Load()

	flag.Parse()
	paths, err := collectPDFs(flag.Args())
	if err != nil {
		log.Fatal(err)
	}
	if len(paths) == 0 {
		fmt.Println("Usage: ragbot-ingest <file.pdf|dir> [...]")
		os.Exit(1)
	}

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

	embedder, err := initEmbedder(ctx, zapLogger)
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

	for _, path := range paths {
		if err := ingestFile(ctx, extractor, embedder, retriever, path); err != nil {
			log.Fatalf("ingest %s: %v", path, err)
		}
		zapLogger.Sugar().Infof("ingested file: %s", path)
	}
}

// collectPDFs expands directory arguments into the .pdf files they contain.
func collectPDFs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				continue
			}
			paths = append(paths, filepath.Join(arg, entry.Name()))
		}
	}
	return paths, nil
}

func ingestFile(ctx context.Context, extractor ragbot.Extractor, embedder ragbot.Embedder, retriever ragbot.Retriever, path string) error {
	ctx, cancel := context.WithTimeout(ctx, ingestFileTimeout)
	defer cancel()

	contents, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer contents.Close()

	fileName := filepath.Base(path)

	documents, err := extractor.Extract(ctx, fileName, contents)
	if err != nil {
		return fmt.Errorf("extract documents: %w", err)
	}

	fileID := ragbot.NewFileID()
	for i := 0; i < len(documents); i++ {
		documents[i].FileID = fileID
		documents[i].Source = fileName
		documents[i] = documents[i].Sanitize()
	}

	vectors, err := embedder.EmbedDocuments(ctx, documents)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(documents) {
		return fmt.Errorf("embedded batch size mismatch: %d != %d", len(vectors), len(documents))
	}

	return retriever.SaveDocuments(ctx, documents, vectors)
}

func initEmbedder(ctx context.Context, zapLogger *zap.Logger) (ragbot.Embedder, error) {
	switch viper.GetString("adapter.model.name") {
	case "azure-openai":
		config := openai.DefaultAzureConfig(
			os.Getenv("AZURE_OPENAI_API_KEY"),
			viper.GetString("azure.endpoint"),
		)
		return azureopenai.New(openai.NewClientWithConfig(config),
			azureopenai.WithEmbeddingModel(viper.GetString("adapter.model.embedding_model")),
			azureopenai.WithLogger(zapLogger),
		), nil
	case "google-genai":
		// The client gets the API key from the environment variable `GEMINI_API_KEY`.
		client, err := genai.NewClient(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("genai client: %w", err)
		}
		return googlegenai.New(client,
			googlegenai.WithEmbeddingModel(viper.GetString("adapter.model.embedding_model")),
			googlegenai.WithLogger(zapLogger),
		), nil
	default:
		return nil, fmt.Errorf("unknown model adapter: %s", viper.GetString("adapter.model.name"))
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
