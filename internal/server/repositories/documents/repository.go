package documents

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	GetOwned(ctx context.Context, id, userID string) (*models.Document, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Document, error)
}
