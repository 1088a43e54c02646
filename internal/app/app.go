// Package app wires configuration, storage, services and transport into a
// runnable server.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"contractpilot/internal/cache"
	"contractpilot/internal/config"
	"contractpilot/internal/metrics"
	"contractpilot/internal/repository"
	"contractpilot/internal/service"
	"contractpilot/internal/transport/rest"
	"contractpilot/internal/transport/ws"
)

type App struct {
	Config *config.Config
	Logger zerolog.Logger

	Mongo *mongo.Client // nil when MONGO_URI is unset
	Redis *redis.Client // nil when REDIS_URI is unset

	Metrics     *metrics.Collector
	Hub         *ws.Hub
	Persister   *service.Persister
	Assessments *service.AssessmentService
	Handler     http.Handler
}

// NewLogger builds the root logger from LOG_LEVEL and LOG_FORMAT
func NewLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "contractpilot").Logger()
}

// New connects storage and assembles the service graph
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	var db *mongo.Database
	if cfg.MongoURI != "" {
		client, err := connectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		a.Mongo = client
		db = client.Database(cfg.MongoDB)
		logger.Info().Str("database", cfg.MongoDB).Msg("Connected to MongoDB")
	}

	var store cache.SessionStore
	if cfg.RedisURI != "" {
		rdb, err := connectRedis(ctx, cfg.RedisURI)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.Redis = rdb
		store = cache.NewSessionCache(rdb, cfg.SessionTTL)
		logger.Info().Msg("Connected to Redis")
	} else {
		store = cache.NewMemoryCache(cfg.SessionTTL)
		logger.Warn().Msg("REDIS_URI not set, sessions are held in memory")
	}

	a.Metrics = metrics.NewCollector(logger)

	var source service.RequirementsSource
	switch cfg.RequirementsSource {
	case config.SourceMongo:
		source = service.NewMongoRequirementsSource(repository.NewRequirementsRepo(db))
	default:
		source = service.NewRequirementsClient(cfg.RequirementsURL, cfg.RequirementsToken, cfg.FetchRetries, logger)
	}

	var sinks []service.ArtifactSink
	var artifacts service.ArtifactReader
	if cfg.NegotiationURL != "" {
		sinks = append(sinks, service.NewHTTPSink(cfg.NegotiationURL, cfg.NegotiationToken))
	}
	if db != nil {
		repo := repository.NewArtifactRepo(db)
		sinks = append(sinks, service.NewRepoSink(repo))
		artifacts = repo
	}
	if len(sinks) == 0 {
		logger.Warn().Msg("No artifact sinks configured, completed assessments are not persisted")
	}
	a.Persister = service.NewPersister(cfg.PersistTimeout, a.Metrics, logger, sinks...)

	auth := service.NewAuthService(cfg.JWTSecret, cfg.TokenTTL)
	a.Assessments = service.NewAssessmentService(service.AssessmentConfig{
		Source:       source,
		Store:        store,
		Auth:         auth,
		Persister:    a.Persister,
		Artifacts:    artifacts,
		Recorder:     a.Metrics,
		FetchTimeout: cfg.FetchTimeout,
		Logger:       logger,
	})

	// Inject broadcaster (hub implements service.Broadcaster)
	a.Hub = ws.NewHub(logger)
	a.Assessments.SetBroadcaster(a.Hub)

	a.Handler = rest.NewRouter(&rest.Container{
		AssessmentService: a.Assessments,
		AuthService:       auth,
		WSHub:             a.Hub,
		Metrics:           a.Metrics.Handler(),
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		Logger:            logger,
	})
	return a, nil
}

// Close waits for in-flight persistence and releases connections
func (a *App) Close(ctx context.Context) {
	if a.Persister != nil {
		a.Persister.Wait()
	}
	if a.Hub != nil {
		a.Hub.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to disconnect MongoDB")
		}
	}
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

func connectRedis(ctx context.Context, uri string) (*redis.Client, error) {
	opts := &redis.Options{Addr: uri}
	if strings.Contains(uri, "://") {
		parsed, err := redis.ParseURL(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URI: %w", err)
		}
		opts = parsed
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return rdb, nil
}
