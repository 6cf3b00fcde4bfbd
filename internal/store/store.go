// Package store implements the transactional link store on Redis. Redirect
// records, the aggregate link counter and user projections share one client
// and key prefix; all multi-key mutation goes through WATCH-based
// check-and-set transactions.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/testersen/jmsn.link/internal/config"
	"github.com/testersen/jmsn.link/pkg/logger"
)

var (
	// ErrNotFound means the requested record does not exist (or its
	// stored value is empty).
	ErrNotFound = errors.New("record not found")
	// ErrSlugExists means the create transaction's precondition failed:
	// the slug is already taken, either before the transaction started or
	// by a concurrent creation that committed first.
	ErrSlugExists = errors.New("slug already exists")
	// ErrBadCursor means the pagination cursor was not produced by a
	// prior List call.
	ErrBadCursor = errors.New("invalid cursor")
)

// Store provides access to redirect records, the link counter and user
// projections.
type Store struct {
	client    redis.UniversalClient
	keyPrefix string
	log       *zap.Logger
}

// New connects to Redis and returns a Store.
func New(cfg *config.RedisConfig) (*Store, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addresses,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MasterName:   cfg.MasterName,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, cfg.KeyPrefix), nil
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(client redis.UniversalClient, keyPrefix string) *Store {
	return &Store{
		client:    client,
		keyPrefix: keyPrefix,
		log:       logger.Named("store"),
	}
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping reports whether the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) linkKey(slug string) string {
	return s.keyPrefix + "link:" + slug
}

func (s *Store) linkPattern() string {
	return s.keyPrefix + "link:*"
}

func (s *Store) counterKey() string {
	return s.keyPrefix + "link_count"
}

func (s *Store) userKey(sub string) string {
	return s.keyPrefix + "user:" + sub
}
