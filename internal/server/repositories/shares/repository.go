package shares

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, share *models.Share) error
	GetByToken(ctx context.Context, token string) (*models.Share, error)
}
