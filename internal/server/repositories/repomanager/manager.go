package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/shares"
)

// RepositoryManager vends repository implementations bound to a DBTX, so
// services can run several repositories inside one transaction.
type RepositoryManager interface {
	Documents(db dbx.DBTX) documents.Repository
	Shares(db dbx.DBTX) shares.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
