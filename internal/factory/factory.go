package factory

import (
	"errors"
	"io"
	"log/slog"

	"gamehub/internal/dependencies/clock"
	"gamehub/internal/dependencies/random"
	"gamehub/internal/hub"
	"gamehub/internal/services/anticheat"
	"gamehub/internal/services/moverelay"
	"gamehub/internal/services/query"
	"gamehub/internal/services/roster"
	"gamehub/internal/services/score"
	"gamehub/internal/storage"
	"gamehub/internal/storage/memory"
	redisstorage "gamehub/internal/storage/redis"
	"gamehub/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.PlayerStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Hub
	Registry *hub.Registry
	Router   *hub.Router

	// Services
	ScoreService     *score.Service
	MoveRelayService *moverelay.Service
	AntiCheatService *anticheat.Service
	QueryService     *query.Service
	RosterService    *roster.Service

	// Transport
	WSHandler *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// AntiCheat holds the ban policy (optional)
	// If nil, defaults to anticheat.DefaultConfig()
	AntiCheat *anticheat.Config
	// WSOptions holds the websocket transport settings (optional)
	// If zero value, defaults to ws.DefaultOptions()
	WSOptions ws.Options
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.PlayerStore
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default ban policy if not provided; an explicit config is taken
	// as-is so a zero threshold stays configurable
	banCfg := anticheat.DefaultConfig()
	if cfg.AntiCheat != nil {
		banCfg = *cfg.AntiCheat
	}

	wsOpts := cfg.WSOptions
	if wsOpts.MaxMessageBytes == 0 {
		wsOpts = ws.DefaultOptions()
	}

	return newWithDependencies(store, clk, rnd, banCfg, wsOpts, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.PlayerStore, clk clock.Clock, rnd random.Random, banCfg anticheat.Config, wsOpts ws.Options, logger *slog.Logger) *App {
	registry := hub.NewRegistry(logger)
	router := hub.NewRouter(registry, logger)

	scoreService := score.New(store, router, clk, logger)
	moveRelayService := moverelay.New(router, clk, logger)
	antiCheatService := anticheat.New(store, router, clk, banCfg, logger)
	queryService := query.New(store, logger)
	rosterService := roster.New(store, clk, logger)

	wsHandler := ws.NewHandler(ws.HandlerConfig{
		Registry:  registry,
		Router:    router,
		Scores:    scoreService,
		Moves:     moveRelayService,
		AntiCheat: antiCheatService,
		Queries:   queryService,
		Roster:    rosterService,
		Random:    rnd,
		Options:   wsOpts,
		Logger:    logger,
	})

	return &App{
		Storage:          store,
		Clock:            clk,
		Random:           rnd,
		Registry:         registry,
		Router:           router,
		ScoreService:     scoreService,
		MoveRelayService: moveRelayService,
		AntiCheatService: antiCheatService,
		QueryService:     queryService,
		RosterService:    rosterService,
		WSHandler:        wsHandler,
	}
}
