package repository

import (
	"context"
	"database/sql"
	"errors"
)

// SettingsRepo stores opaque values under string keys.
type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get returns the value stored under key. A missing key yields (nil, false, nil).
func (r *SettingsRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (r *SettingsRepo) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO settings(key, value, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET
	 value=excluded.value,
	 updated_at=excluded.updated_at;
	`, key, value)
	return err
}

func (r *SettingsRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}

// Blob binds the repo to one key so it can back a single serialized value.
func (r *SettingsRepo) Blob(key string) *Blob {
	return &Blob{repo: r, key: key}
}

// Blob is one settings row read and written wholesale.
type Blob struct {
	repo *SettingsRepo
	key  string
}

// Load returns nil when the key has never been written.
func (b *Blob) Load(ctx context.Context) ([]byte, error) {
	v, _, err := b.repo.Get(ctx, b.key)
	return v, err
}

func (b *Blob) Save(ctx context.Context, data []byte) error {
	return b.repo.Put(ctx, b.key, data)
}
