package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Vadied/party-manager/internal/kvstore"
)

// KV stores kvstore payloads in the collections table. Each View and Update
// runs in one SQL transaction.
type KV struct {
	db  *sql.DB
	now func() time.Time
}

// NewKV returns a kvstore.Store over db. The schema must already be applied.
func NewKV(db *sql.DB) *KV {
	return &KV{db: db, now: time.Now}
}

// View implements kvstore.Store.
func (kv *KV) View(ctx context.Context, fn func(kvstore.Tx) error) error {
	tx, err := kv.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin view: %w", err)
	}
	defer tx.Rollback()
	return fn(&kvTx{ctx: ctx, tx: tx})
}

// Update implements kvstore.Store.
func (kv *KV) Update(ctx context.Context, fn func(kvstore.Tx) error) error {
	tx, err := kv.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&kvTx{ctx: ctx, tx: tx, writable: true, now: kv.now}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

type kvTx struct {
	ctx      context.Context
	tx       *sql.Tx
	writable bool
	now      func() time.Time
}

func (t *kvTx) Get(key string) ([]byte, error) {
	var payload []byte
	err := t.tx.QueryRowContext(t.ctx, "SELECT payload FROM collections WHERE name = ?", key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", key, err)
	}
	return payload, nil
}

func (t *kvTx) Put(key string, value []byte) error {
	if !t.writable {
		return kvstore.ErrReadOnly
	}
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO collections (name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, key, value, formatTime(t.now()))
	if err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	return nil
}
