package categories

import (
	"context"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, name string) (*models.Category, error)
}
