package tasks

import (
	"context"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

// Repository is the task store. Every operation takes the owning user's id
// and never touches another user's rows.
type Repository interface {
	ListByUser(ctx context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error)
	Get(ctx context.Context, id, userID int64) (*models.Task, error)
	Create(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error)
	Update(ctx context.Context, id, userID int64, in models.TaskInput) error
	Delete(ctx context.Context, id, userID int64) error
	ToggleComplete(ctx context.Context, id, userID int64) (bool, error)
}
