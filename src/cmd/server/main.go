package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"ouvidoria-analytics/src/domain"
	"ouvidoria-analytics/src/helper/env"
	"ouvidoria-analytics/src/infra/mongodb"
	"ouvidoria-analytics/src/infra/redis"
	"ouvidoria-analytics/src/repositories"
	"ouvidoria-analytics/src/server"
	"ouvidoria-analytics/src/services/analytics"
	"ouvidoria-analytics/src/services/smartcache"
	"ouvidoria-analytics/src/services/watcher"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
)

// cacheBackends agrupa o CacheStore escolhido com sua visão de stats, para o
// fx injetar os dois lados de uma vez.
type cacheBackends struct {
	fx.Out

	Store repositories.CacheStore
	Stats repositories.CacheStatsReader
}

func main() {
	// Configurar logger
	log.SetOutput(os.Stdout)
	log.Println("Starting analytics API server with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newMongoDatabase,
			newCacheBackends,
			newPolicy,
			newSmartCache,
			newAnalyticsQueryRepository,
			newAnalyticsService,
			newChangeStreamWatcher,
			newServer,
		),

		// Invocations
		fx.Invoke(registerServerHooks),
		fx.Invoke(registerWatcherHooks),
		fx.Invoke(registerExpirySweeper),
	)

	// Start the application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for app to exit gracefully
	<-app.Done()
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

func newMongoDatabase() (*mongo.Database, error) {
	uri := env.MustGetString("MONGODB_URI")
	dbName := env.GetString("MONGODB_DATABASE", "ouvidoria")
	maxPoolSize := env.GetInt("MONGODB_MAX_POOL_SIZE", 25)

	return mongodb.NewMongoClient(uri, dbName, maxPoolSize)
}

// newCacheBackends escolhe o backend do cache via CACHE_BACKEND
// (mongo | redis | memory). O default é mongo: o cache mora ao lado dos
// registros e sobrevive a restart do processo.
func newCacheBackends(lc fx.Lifecycle, db *mongo.Database) (cacheBackends, error) {
	backend := env.GetString("CACHE_BACKEND", "mongo")

	switch backend {
	case "mongo":
		store := repositories.NewMongoCacheStore(db)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return store.EnsureIndexes(ctx)
			},
		})
		return cacheBackends{Store: store, Stats: store}, nil

	case "redis":
		addr := env.MustGetString("REDIS_ADDR")
		poolSize := env.GetInt("REDIS_POOL_SIZE", 50)
		store := repositories.NewRedisCacheStore(redis.NewRedisClient(addr, poolSize))
		return cacheBackends{Store: store, Stats: store}, nil

	case "memory":
		store := repositories.NewMemoryCacheStore()
		return cacheBackends{Store: store, Stats: store}, nil

	default:
		return cacheBackends{}, fmt.Errorf("unknown CACHE_BACKEND %q (expected mongo, redis or memory)", backend)
	}
}

func newPolicy() domain.Policy {
	return domain.DefaultPolicy()
}

func newSmartCache(logger *slog.Logger, store repositories.CacheStore, policy domain.Policy) *smartcache.SmartCache {
	return smartcache.NewSmartCache(logger, store, policy)
}

func newAnalyticsQueryRepository(logger *slog.Logger, db *mongo.Database) *repositories.AnalyticsQueryRepository {
	maxTimeMS := env.GetInt("AGGREGATION_MAX_TIME_MS", 60000)
	slowMS := env.GetInt("AGGREGATION_SLOW_THRESHOLD_MS", 1000)

	return repositories.NewAnalyticsQueryRepository(
		logger,
		db,
		time.Duration(maxTimeMS)*time.Millisecond,
		time.Duration(slowMS)*time.Millisecond,
	)
}

func newAnalyticsService(
	logger *slog.Logger,
	queryRepository *repositories.AnalyticsQueryRepository,
	cache *smartcache.SmartCache,
) *analytics.AnalyticsService {
	return analytics.NewAnalyticsService(logger, queryRepository, cache, mongodb.RecordsCollection)
}

// newChangeStreamWatcher liga o watcher de invalidação no change stream da
// collection de registros.
func newChangeStreamWatcher(
	logger *slog.Logger,
	db *mongo.Database,
	store repositories.CacheStore,
	policy domain.Policy,
) *watcher.Watcher {
	feed := mongodb.NewChangeStreamFeed(logger, db, mongodb.RecordsCollection)
	reconnectSeconds := env.GetInt("WATCHER_RECONNECT_DELAY_SECONDS", 5)

	return watcher.NewWatcher(logger, feed, store, policy, time.Duration(reconnectSeconds)*time.Second)
}

func newServer(
	logger *slog.Logger,
	analyticsService *analytics.AnalyticsService,
	statsReader repositories.CacheStatsReader,
) *server.Server {
	port := env.GetInt("SERVER_PORT", 8888)

	return server.NewServer(logger, port, analyticsService, statsReader)
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(lc fx.Lifecycle, srv *server.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Start server in a separate goroutine
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Create timeout context for graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			log.Println("Shutting down server...")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server forced to shutdown: %v", err)
				return err
			}
			log.Println("Server exited gracefully")
			return nil
		},
	})
}

// registerWatcherHooks sobe o watcher de invalidação junto com o servidor e
// o derruba via cancelamento do contexto no shutdown.
func registerWatcherHooks(lc fx.Lifecycle, logger *slog.Logger, w *watcher.Watcher) {
	watchCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := w.Run(watchCtx); err != nil {
					logger.Error("Change feed watcher exited with error", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}

// registerExpirySweeper agenda a varredura periódica de entradas expiradas.
// A expiração preguiçosa no Get já garante a correção; a varredura só contém
// o crescimento físico da collection de cache.
func registerExpirySweeper(lc fx.Lifecycle, logger *slog.Logger, store repositories.CacheStore) {
	intervalSeconds := env.GetInt("CACHE_SWEEP_INTERVAL_SECONDS", 600)
	sweepCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ticker := time.NewTicker(time.Duration(intervalSeconds) * time.Second)
				defer ticker.Stop()

				for {
					select {
					case <-sweepCtx.Done():
						return
					case <-ticker.C:
						deleted, err := store.DeleteExpired(sweepCtx)
						if err != nil {
							logger.Error("Cache expiry sweep failed", "error", err)
							continue
						}
						if deleted > 0 {
							logger.Info("Cache expiry sweep completed", "entries_deleted", deleted)
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}
