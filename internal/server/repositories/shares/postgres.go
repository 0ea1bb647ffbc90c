// Package shares provides the PostgreSQL-backed repository for share grants.
package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements share-grant storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a share grant. Tokens are random uuids; a conflict is a
// programming error and surfaces as a DB error.
func (r *PostgresRepository) Create(ctx context.Context, share *models.Share) error {
	query := `
		INSERT INTO shares (token, document_id, pin_hash, expires_at)
		VALUES ($1, $2, $3, $4);
	`
	_, err := r.db.ExecContext(ctx, query,
		share.Token, share.DocumentID, share.PinHash, share.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByToken looks a grant up by its public token. Expiry is NOT checked
// here; the service layer enforces it so that "expired" and "absent" can be
// collapsed into one failure class.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.Share, error) {
	query := `
		SELECT token, document_id, pin_hash, expires_at, created_at
		FROM shares WHERE token = $1;
	`
	var item models.Share
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&item.Token, &item.DocumentID, &item.PinHash, &item.ExpiresAt, &item.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &item, nil
}
