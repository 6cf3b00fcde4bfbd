package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/testersen/jmsn.link/internal/model"
)

// UpsertUser writes the user projection for a subject, overwriting any
// previous record. Called on every session issuance.
func (s *Store) UpsertUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.client.Set(ctx, s.userKey(user.Sub), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUser returns the stored projection for a subject, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, sub string) (*model.User, error) {
	data, err := s.client.Get(ctx, s.userKey(sub)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}
