package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/testersen/jmsn.link/internal/model"
)

// Init seeds the aggregate link counter to zero if it does not exist yet.
// The SETNX makes bring-up idempotent across restarts: an existing counter
// is never reset.
func (s *Store) Init(ctx context.Context) error {
	if err := s.client.SetNX(ctx, s.counterKey(), 0, 0).Err(); err != nil {
		return fmt.Errorf("failed to initialize link counter: %w", err)
	}
	return nil
}

// CreateRedirect writes a new redirect record and bumps the link counter in
// a single check-and-set transaction. The precondition is that the slug's
// key does not exist; if it does — or a concurrent creation commits it
// between the check and the EXEC — the whole transaction aborts and
// ErrSlugExists is returned. There is no partial state: the counter only
// moves when the record lands.
//
// The caller decides what to do about a conflict; this layer never retries.
func (s *Store) CreateRedirect(ctx context.Context, rec *model.Redirect) error {
	key := s.linkKey(rec.Slug)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode redirect: %w", err)
	}

	var expiry time.Duration
	if rec.MaxAge > 0 {
		expiry = time.Duration(rec.MaxAge) * time.Millisecond
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return ErrSlugExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Incr(ctx, s.counterKey())
			pipe.Set(ctx, key, data, expiry)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		// The watched key changed before EXEC: someone else created the
		// same slug first.
		s.log.Warn("redirect creation lost race", zap.String("slug", rec.Slug))
		return ErrSlugExists
	}
	if err != nil {
		return err
	}

	s.log.Info("redirect created",
		zap.String("slug", rec.Slug),
		zap.String("type", rec.Type),
		zap.String("created_by", rec.CreatedBy),
	)
	return nil
}

// GetRedirect returns the record for a slug, or ErrNotFound.
func (s *Store) GetRedirect(ctx context.Context, slug string) (*model.Redirect, error) {
	data, err := s.client.Get(ctx, s.linkKey(slug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get redirect: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}

	var rec model.Redirect
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode redirect: %w", err)
	}
	return &rec, nil
}

// DeleteRedirect removes a record unconditionally. The link counter is a
// creation tally, not a live inventory size, so it is left untouched.
func (s *Store) DeleteRedirect(ctx context.Context, slug string) error {
	n, err := s.client.Del(ctx, s.linkKey(slug)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete redirect: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRedirects returns one page of redirect records. The cursor is opaque
// to callers; pass the returned cursor to continue a scan, an empty cursor
// starts (or ends) one. The count in the result is the aggregate creation
// tally, independent of how many records the scan returns.
func (s *Store) ListRedirects(ctx context.Context, limit int64, cursor string) (*model.RedirectList, error) {
	pos, err := parseCursor(cursor)
	if err != nil {
		return nil, err
	}

	keys, next, err := s.client.Scan(ctx, pos, s.linkPattern(), limit).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan redirects: %w", err)
	}

	redirects := make([]model.Redirect, 0, len(keys))
	if len(keys) > 0 {
		vals, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch redirects: %w", err)
		}
		for i, val := range vals {
			str, ok := val.(string)
			if !ok || str == "" {
				// Expired between SCAN and MGET.
				continue
			}
			var rec model.Redirect
			if err := json.Unmarshal([]byte(str), &rec); err != nil {
				s.log.Warn("skipping undecodable redirect", zap.String("key", keys[i]), zap.Error(err))
				continue
			}
			redirects = append(redirects, rec)
		}
	}

	count, err := s.LinkCount(ctx)
	if err != nil {
		return nil, err
	}

	return &model.RedirectList{
		Redirects: redirects,
		Cursor:    formatCursor(next),
		Count:     count,
	}, nil
}

// LinkCount returns the aggregate number of links ever created.
func (s *Store) LinkCount(ctx context.Context) (int64, error) {
	count, err := s.client.Get(ctx, s.counterKey()).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get link counter: %w", err)
	}
	return count, nil
}

func parseCursor(cursor string) (uint64, error) {
	if cursor == "" {
		return 0, nil
	}
	pos, err := strconv.ParseUint(cursor, 10, 64)
	if err != nil {
		return 0, ErrBadCursor
	}
	return pos, nil
}

func formatCursor(pos uint64) string {
	if pos == 0 {
		return ""
	}
	return strconv.FormatUint(pos, 10)
}
