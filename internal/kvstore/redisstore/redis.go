// Package redisstore implements kvstore.Store on Redis. Updates use
// WATCH/MULTI: every key read inside an Update is watched, and the staged
// writes are applied in one MULTI/EXEC. A concurrent change to a watched key
// makes the update run again from scratch.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Vadied/party-manager/internal/kvstore"
)

// DefaultMaxRetries bounds how often an Update is retried after a conflict.
const DefaultMaxRetries = 5

// ErrConflict is returned when an Update keeps losing to concurrent writers.
var ErrConflict = errors.New("redisstore: too many concurrent updates")

// Store is a kvstore.Store backed by a Redis client.
type Store struct {
	client     redis.UniversalClient
	prefix     string
	maxRetries int
}

// New wraps client. Every key is stored under prefix.
func New(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix, maxRetries: DefaultMaxRetries}
}

// View implements kvstore.Store.
func (s *Store) View(ctx context.Context, fn func(kvstore.Tx) error) error {
	return fn(&viewTx{ctx: ctx, s: s})
}

// Update implements kvstore.Store.
func (s *Store) Update(ctx context.Context, fn func(kvstore.Tx) error) error {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			tx := &updateTx{ctx: ctx, s: s, rtx: rtx, staged: make(map[string][]byte)}
			if err := fn(tx); err != nil {
				return err
			}
			if len(tx.staged) == 0 {
				return nil
			}
			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for _, key := range tx.order {
					pipe.Set(ctx, s.key(key), tx.staged[key], 0)
				}
				return nil
			})
			return err
		})
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// getter is the part of redis.Client and redis.Tx used for reads.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Store) get(ctx context.Context, c getter, key string) ([]byte, error) {
	v, err := c.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

type viewTx struct {
	ctx context.Context
	s   *Store
}

func (tx *viewTx) Get(key string) ([]byte, error) {
	return tx.s.get(tx.ctx, tx.s.client, key)
}

func (tx *viewTx) Put(string, []byte) error {
	return kvstore.ErrReadOnly
}

type updateTx struct {
	ctx    context.Context
	s      *Store
	rtx    *redis.Tx
	staged map[string][]byte
	order  []string
}

func (tx *updateTx) Get(key string) ([]byte, error) {
	if v, ok := tx.staged[key]; ok {
		return append([]byte(nil), v...), nil
	}
	if err := tx.rtx.Watch(tx.ctx, tx.s.key(key)).Err(); err != nil {
		return nil, fmt.Errorf("redis watch %s: %w", key, err)
	}
	return tx.s.get(tx.ctx, tx.rtx, key)
}

func (tx *updateTx) Put(key string, value []byte) error {
	if _, ok := tx.staged[key]; !ok {
		tx.order = append(tx.order, key)
	}
	tx.staged[key] = append([]byte(nil), value...)
	return nil
}
