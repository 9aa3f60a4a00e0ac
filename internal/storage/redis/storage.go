package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Token operations

func (s *Storage) SaveToken(ctx context.Context, scope storage.Scope, token string) error {
	return s.client.Set(ctx, tokenKey(scope), token, s.cfg.SessionTTL).Err()
}

func (s *Storage) GetToken(ctx context.Context, scope storage.Scope) (string, error) {
	token, err := s.client.Get(ctx, tokenKey(scope)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrNotFound
		}
		return "", err
	}
	return token, nil
}

func (s *Storage) DeleteToken(ctx context.Context, scope storage.Scope) error {
	return s.client.Del(ctx, tokenKey(scope)).Err()
}

// Active profile operations

func (s *Storage) SaveActiveProfile(ctx context.Context, scope storage.Scope, profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, activeProfileKey(scope), data, s.cfg.SessionTTL).Err()
}

func (s *Storage) GetActiveProfile(ctx context.Context, scope storage.Scope) (*model.Profile, error) {
	data, err := s.client.Get(ctx, activeProfileKey(scope)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Storage) DeleteActiveProfile(ctx context.Context, scope storage.Scope) error {
	return s.client.Del(ctx, activeProfileKey(scope)).Err()
}

func (s *Storage) Clear(ctx context.Context, scope storage.Scope) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, tokenKey(scope))
	pipe.Del(ctx, activeProfileKey(scope))
	_, err := pipe.Exec(ctx)
	return err
}
