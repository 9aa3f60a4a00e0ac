package factory

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/dependencies/clock"
	"github.com/mcoot/gamerhub/internal/storage"
	"github.com/mcoot/gamerhub/internal/storage/file"
	"github.com/mcoot/gamerhub/internal/storage/memory"
	redisstorage "github.com/mcoot/gamerhub/internal/storage/redis"
	"github.com/mcoot/gamerhub/internal/validation"
	"github.com/mcoot/gamerhub/internal/workspace"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeFile   = "file"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	API   *backend.Client
	Clock clock.Clock

	Validator *validation.Validator
	Logger    *slog.Logger

	// Registry holds one workspace per browser session
	Registry *workspace.Registry
}

// Config holds configuration for the application factory
type Config struct {
	// APIURL is the base URL of the GamerHub API
	APIURL string
	// HTTPClient overrides the client used for API calls (optional)
	HTTPClient *http.Client
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "file")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// StatePath is the state file (required if StorageType is "file")
	StatePath string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.APIURL == "" {
		return nil, errors.New("APIURL required")
	}

	// Create storage based on type
	var store storage.Storage
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
	case StorageTypeFile:
		if cfg.StatePath == "" {
			return nil, errors.New("StatePath required when StorageType is file")
		}
		store = file.New(cfg.StatePath)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'file'")
	}

	api := backend.NewClientWithHTTP(cfg.APIURL, cfg.HTTPClient)
	return newWithDependencies(store, api, clock.New(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, api *backend.Client, clk clock.Clock, logger *slog.Logger) *App {
	v := validation.New()
	registry := workspace.NewRegistry(workspace.Deps{
		Storage:   store,
		API:       api,
		Clock:     clk,
		Validator: v,
		Logger:    logger,
	})

	return &App{
		Storage:   store,
		API:       api,
		Clock:     clk,
		Validator: v,
		Logger:    logger,
		Registry:  registry,
	}
}

// Workspace opens a standalone workspace outside the registry, as the CLI does
func (a *App) Workspace(id string) *workspace.Workspace {
	return workspace.New(id, a.deps())
}

func (a *App) deps() workspace.Deps {
	return workspace.Deps{
		Storage:   a.Storage,
		API:       a.API,
		Clock:     a.Clock,
		Validator: a.Validator,
		Logger:    a.Logger,
	}
}

// Close releases the workspaces and the storage connection
func (a *App) Close() error {
	a.Registry.Close()
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
