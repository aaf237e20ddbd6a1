package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.uber.org/zap"

	"github.com/Hmv123/ragbot"
	redisAdapter "github.com/Hmv123/ragbot/adapter/redis"
	weaviateAdapter "github.com/Hmv123/ragbot/adapter/weaviate"
	"github.com/Hmv123/ragbot/pkg/logger"
)

// Drops the vector search index and creates it again from scratch. Any
// previously indexed documents are lost, files need to be ingested again.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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

	retriever, err := initRetriever(ctx, zapLogger)
	if err != nil {
		log.Fatal(err)
	}

	if err := retriever.Recreate(ctx); err != nil {
		log.Fatal("recreate index: ", err)
	}

	zapLogger.Sugar().Infof("recreated %s search index", retriever.Name())
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
