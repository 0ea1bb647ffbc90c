// Package documents provides the PostgreSQL-backed repository for document
// metadata records.
package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements document storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new document record. Document ids are caller-generated
// random uuids, so conflicts indicate a programming error and surface as DB
// errors.
func (r *PostgresRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (id, user_id, file_name, mime_type, storage_key, thumbnail_key)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.FileName, doc.MimeType, doc.StorageKey, doc.ThumbnailKey)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns a document by id regardless of owner. Used by the share
// path, where the requester is anonymous.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `
		SELECT id, user_id, file_name, mime_type, storage_key, thumbnail_key, created_at
		FROM documents WHERE id = $1;
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetOwned returns a document only if it belongs to userID; otherwise
// common.ErrorNotFound (ownership failures are indistinguishable from
// missing rows).
func (r *PostgresRepository) GetOwned(ctx context.Context, id, userID string) (*models.Document, error) {
	query := `
		SELECT id, user_id, file_name, mime_type, storage_key, thumbnail_key, created_at
		FROM documents WHERE id = $1 AND user_id = $2;
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID))
}

// ListByUser returns all documents owned by userID, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Document, error) {
	query := `
		SELECT id, user_id, file_name, mime_type, storage_key, thumbnail_key, created_at
		FROM documents WHERE user_id = $1
		ORDER BY created_at DESC;
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	var result []*models.Document
	for rows.Next() {
		var item models.Document
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.FileName, &item.MimeType,
			&item.StorageKey, &item.ThumbnailKey, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Document, error) {
	var item models.Document
	err := row.Scan(
		&item.ID, &item.UserID, &item.FileName, &item.MimeType,
		&item.StorageKey, &item.ThumbnailKey, &item.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &item, nil
}
