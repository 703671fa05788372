package web

import (
	"context"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/services"
)

// Accounts is the part of services.AccountService the handlers use.
type Accounts interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Tasks is the part of services.TaskService the handlers use.
type Tasks interface {
	Categories(ctx context.Context) ([]models.Category, error)
	List(ctx context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error)
	Get(ctx context.Context, id, userID int64) (*models.Task, error)
	Create(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error)
	Update(ctx context.Context, id, userID int64, in models.TaskInput) (*models.Task, error)
	Delete(ctx context.Context, id, userID int64) error
	ToggleComplete(ctx context.Context, id, userID int64) (*models.Task, error)
}

// Sessions is the part of services.SessionService the handlers use.
type Sessions interface {
	Issue(ctx context.Context, userID int64) (*services.TokenPair, error)
	Authenticate(accessToken string) (int64, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) error
}
