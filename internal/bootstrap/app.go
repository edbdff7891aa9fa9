package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/graph"
	"jobmatch-backend/internal/queue"
	"jobmatch-backend/internal/shared/cache"
	"jobmatch-backend/internal/shared/config"
	"jobmatch-backend/internal/shared/server"
	"jobmatch-backend/internal/shared/server/middleware"
	"jobmatch-backend/internal/shared/storage/db"
	"jobmatch-backend/internal/shared/storage/object"
	localstore "jobmatch-backend/internal/shared/storage/object/local"
	s3store "jobmatch-backend/internal/shared/storage/object/s3"
	"jobmatch-backend/internal/shared/telemetry"
	"jobmatch-backend/internal/transfer"
)

// App holds shared dependencies.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Graph   graph.Store
	Files   object.ObjectStore
	Queue   queue.Client
	Cache   cache.Cache
	Service *transfer.Service
	Handler *transfer.Handler
}

// Build wires storage, the engine queue and the cache, then the router.
// Dev-like environments fall back to in-memory repositories and a
// recording queue when no database or queue is configured.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	files, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Files:  files,
		Queue:  queueClient,
		Cache:  buildCache(ctx, cfg),
	}
	if sqlDB != nil {
		app.Graph = graph.NewPGStore(sqlDB)
	} else {
		app.Graph = graph.NewMemoryStore()
	}

	app.Service = &transfer.Service{
		Store:         app.Graph,
		Files:         app.Files,
		Queue:         app.Queue,
		Cache:         app.Cache,
		SkillCacheTTL: cfg.SkillCacheTTL,
	}
	app.Handler = transfer.NewHandler(app.Service)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:  cfg,
		API:     app.Handler,
		Limiter: middleware.NewRateLimiter(nil),
	})

	return app, nil
}

// Close releases the database and cache connections.
func (a *App) Close() error {
	var firstErr error
	if a.DB != nil {
		firstErr = a.DB.Close()
	}
	if closer, ok := a.Cache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db_fallback", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db_fallback", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.EngineQueueURL) == "" {
		if config.IsDevLike(cfg.Env) {
			return &queue.Recorder{}, nil
		}
		telemetry.Warn("bootstrap.queue_disabled", map[string]any{"reason": "ENGINE_SQS_QUEUE_URL empty"})
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.EngineQueueURL, cfg.AWSRegion)
}

// buildCache connects to Redis when configured. An unreachable Redis only
// costs the skill catalog cache, so it degrades to Nop.
func buildCache(ctx context.Context, cfg config.Config) cache.Cache {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return cache.Nop{}
	}
	c, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		telemetry.Warn("bootstrap.cache_disabled", map[string]any{"error": err})
		return cache.Nop{}
	}
	return c
}
