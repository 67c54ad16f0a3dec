package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/maintkeeper/internal/dbx"
)

const (
	selectValueSQL = `SELECT value FROM metadata WHERE key = ?`
	upsertValueSQL = `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	deleteKeySQL = `DELETE FROM metadata WHERE key = ?`
)

// SQLiteRepository keeps metadata in the local SQLite database.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, selectValueSQL, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, upsertValueSQL, key, value); err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	return deleteKey(ctx, r.db, key)
}

// DeleteKeys removes several keys at once. When the underlying handle can
// start transactions the keys are removed atomically.
func (r *SQLiteRepository) DeleteKeys(ctx context.Context, keys ...string) error {
	del := func(ctx context.Context, db dbx.DBTX) error {
		for _, k := range keys {
			if err := deleteKey(ctx, db, k); err != nil {
				return err
			}
		}
		return nil
	}
	if tb, ok := r.db.(dbx.TxBeginner); ok {
		return dbx.WithTx(ctx, tb, nil, del)
	}
	return del(ctx, r.db)
}

func deleteKey(ctx context.Context, db dbx.DBTX, key string) error {
	if _, err := db.ExecContext(ctx, deleteKeySQL, key); err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}
