package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/modernshop/internal/persist"
)

// BlobStore is a persist.Storage over the kv_blobs table.
type BlobStore struct {
	conn *sql.DB
}

var _ persist.Storage = (*BlobStore)(nil)

// Blobs returns snapshot storage sharing db's connection pool.
func (db *DB) Blobs() *BlobStore {
	return &BlobStore{conn: db.conn}
}

func (b *BlobStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := b.conn.QueryRowContext(ctx,
		`SELECT data FROM kv_blobs WHERE key = ?`, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: loading blob %s: %w", key, err)
	}
	return data, true, nil
}

// Save upserts the blob. ON CONFLICT keeps the row (and its key) and only
// replaces data, unlike INSERT OR REPLACE which deletes and reinserts.
func (b *BlobStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := b.conn.ExecContext(ctx,
		`INSERT INTO kv_blobs (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving blob %s: %w", key, err)
	}
	return nil
}
