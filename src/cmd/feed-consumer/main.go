package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ouvidoria-analytics/src/domain"
	"ouvidoria-analytics/src/helper/env"
	"ouvidoria-analytics/src/infra/debezium"
	"ouvidoria-analytics/src/infra/kafka"
	"ouvidoria-analytics/src/infra/mongodb"
	"ouvidoria-analytics/src/infra/redis"
	"ouvidoria-analytics/src/repositories"
	"ouvidoria-analytics/src/services/watcher"

	"go.uber.org/fx"
)

// Consumidor de invalidação via CDC: mesma semântica do watcher embutido no
// servidor, mas alimentado pelos tópicos do Debezium em vez do change stream
// direto. Serve para rodar a invalidação como processo separado quando o
// acesso ao replica set não está disponível para a API.
func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting cache invalidation feed consumer with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newCacheStore,
			newKafkaClient,
			newCDCFeed,
			newWatcher,
		),

		// Invocations
		fx.Invoke(startWatcher),
	)

	// Start the application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start feed consumer application: %v", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down feed consumer...")

	// Stop the application
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}

	log.Println("Feed consumer shutdown complete")
}

func newLogger() *slog.Logger {
	logLevel := env.GetString("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// newCacheStore escolhe o mesmo backend configurado para a API; os dois
// processos precisam enxergar as mesmas entradas para a invalidação valer.
func newCacheStore() (repositories.CacheStore, error) {
	backend := env.GetString("CACHE_BACKEND", "mongo")

	switch backend {
	case "mongo":
		uri := env.MustGetString("MONGODB_URI")
		dbName := env.GetString("MONGODB_DATABASE", "ouvidoria")
		maxPoolSize := env.GetInt("MONGODB_MAX_POOL_SIZE", 10)

		db, err := mongodb.NewMongoClient(uri, dbName, maxPoolSize)
		if err != nil {
			return nil, err
		}
		return repositories.NewMongoCacheStore(db), nil

	case "redis":
		addr := env.MustGetString("REDIS_ADDR")
		poolSize := env.GetInt("REDIS_POOL_SIZE", 50)
		return repositories.NewRedisCacheStore(redis.NewRedisClient(addr, poolSize)), nil

	case "memory":
		return nil, fmt.Errorf("CACHE_BACKEND memory is per-process; the feed consumer cannot invalidate it")

	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q (expected mongo or redis)", backend)
	}
}

func newKafkaClient() (*kafka.KafkaClient, error) {
	brokers := env.MustGetString("KAFKA_BROKERS")
	groupID := env.MustGetString("KAFKA_CDC_CONSUMER_GROUP_ID")
	batchSize := env.GetInt("KAFKA_BATCH_SIZE", 100)

	return kafka.NewKafkaClient(brokers, groupID, batchSize)
}

func newCDCFeed(logger *slog.Logger, kafkaClient *kafka.KafkaClient) *debezium.CDCFeed {
	topic := env.MustGetString("KAFKA_CDC_TOPIC")
	collections := strings.Split(env.GetString("CDC_COLLECTIONS", mongodb.RecordsCollection), ",")

	return debezium.NewCDCFeed(logger, topic, kafkaClient, collections)
}

func newWatcher(logger *slog.Logger, feed *debezium.CDCFeed, store repositories.CacheStore) *watcher.Watcher {
	reconnectSeconds := env.GetInt("WATCHER_RECONNECT_DELAY_SECONDS", 5)

	return watcher.NewWatcher(logger, feed, store, domain.DefaultPolicy(), time.Duration(reconnectSeconds)*time.Second)
}

func startWatcher(
	lc fx.Lifecycle,
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
	w *watcher.Watcher,
) {
	watchCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting cache invalidation watcher")

			// Start watcher in background
			go func() {
				if err := w.Run(watchCtx); err != nil {
					logger.Error("Watcher failed", "error", err)
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()

			logger.Info("Shutting down Kafka client...")
			if err := kafkaClient.Close(); err != nil {
				logger.Error("Failed to close Kafka client", "error", err)
				return err
			}
			logger.Info("Kafka client shut down gracefully")
			return nil
		},
	})
}
