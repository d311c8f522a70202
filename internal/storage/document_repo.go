package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Get returns the document stored under key, or nil when there is none.
func (r *DocumentRepo) Get(ctx context.Context, key string) (*Document, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT key, version, data, created_at, updated_at
		FROM documents
		WHERE key = ?
	`, key)
	return scanDocument(row)
}

func (r *DocumentRepo) List(ctx context.Context) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key, version, data, created_at, updated_at
		FROM documents
		ORDER BY key ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("document list: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("document rows: %w", err)
	}
	return out, nil
}

func (r *DocumentRepo) Put(ctx context.Context, doc Document) error {
	return putDocument(ctx, r.db, doc)
}

// PutAll writes every document in a single transaction: either all of them
// land or none do.
func (r *DocumentRepo) PutAll(ctx context.Context, docs ...Document) error {
	if len(docs) == 0 {
		return nil
	}
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, d := range docs {
			if err := putDocument(ctx, tx, d); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *DocumentRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key); err != nil {
		return fmt.Errorf("document delete: %w", err)
	}
	return nil
}

// WithTx runs fn inside a SQL transaction.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func putDocument(ctx context.Context, ex execer, doc Document) error {
	if doc.Key == "" {
		return fmt.Errorf("document put: empty key")
	}
	if !json.Valid(doc.Data) {
		return fmt.Errorf("document put %s: invalid json", doc.Key)
	}
	now := doc.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO documents (key, version, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			version = excluded.version,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, doc.Key, doc.Version, string(doc.Data), now, now)
	if err != nil {
		return fmt.Errorf("document put %s: %w", doc.Key, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var (
		d         Document
		data      string
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)
	if err := row.Scan(&d.Key, &d.Version, &data, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("document scan: %w", err)
	}
	d.Data = json.RawMessage(data)
	if createdAt.Valid {
		v := createdAt.Time
		d.CreatedAt = &v
	}
	if updatedAt.Valid {
		d.UpdatedAt = updatedAt.Time
	}
	return &d, nil
}
