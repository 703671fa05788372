package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/repomanager"
)

// Task name length bounds, in characters.
const (
	TaskNameMin = 4
	TaskNameMax = 80
)

// TaskService manages a user's tasks. Every method takes the acting user's
// id; tasks owned by anyone else behave as if they did not exist.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "tasks"),
		now:         time.Now,
	}
}

// Categories returns the selectable categories.
func (s *TaskService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.repomanager.Categories(s.db).List(ctx)
}

func (s *TaskService) List(ctx context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error) {
	return s.repomanager.Tasks(s.db).ListByUser(ctx, userID, filter)
}

// Get returns the task, or common.ErrorNotFound.
func (s *TaskService) Get(ctx context.Context, id, userID int64) (*models.Task, error) {
	return s.repomanager.Tasks(s.db).Get(ctx, id, userID)
}

// Create validates in and stores a new pending task. Invalid input yields a
// *common.ValidationError.
func (s *TaskService) Create(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error) {
	category, err := s.validate(ctx, s.db, in)
	if err != nil {
		return nil, err
	}

	task, err := s.repomanager.Tasks(s.db).Create(ctx, userID, in)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	task.CategoryName = category.Name

	s.log.Info(ctx, "task created", "user_id", userID, "task_id", task.ID)
	return task, nil
}

// Update replaces the editable fields of a task. A task the user does not
// own yields common.ErrorNotFound before any validation happens.
func (s *TaskService) Update(ctx context.Context, id, userID int64, in models.TaskInput) (*models.Task, error) {
	var updated *models.Task
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)

		if _, err := repo.Get(ctx, id, userID); err != nil {
			return err
		}
		if _, err := s.validate(ctx, tx, in); err != nil {
			return err
		}
		if err := repo.Update(ctx, id, userID, in); err != nil {
			return err
		}

		var err error
		updated, err = repo.Get(ctx, id, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "task updated", "user_id", userID, "task_id", id)
	return updated, nil
}

// Delete removes the task, or returns common.ErrorNotFound.
func (s *TaskService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.repomanager.Tasks(s.db).Delete(ctx, id, userID); err != nil {
		return err
	}
	s.log.Info(ctx, "task deleted", "user_id", userID, "task_id", id)
	return nil
}

// ToggleComplete flips the task between pending and completed and returns
// it in its new state.
func (s *TaskService) ToggleComplete(ctx context.Context, id, userID int64) (*models.Task, error) {
	var task *models.Task
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)
		if _, err := repo.ToggleComplete(ctx, id, userID); err != nil {
			return err
		}
		var err error
		task, err = repo.Get(ctx, id, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// validate checks the name length, that the due date is not in the past and
// that the category exists. It returns the category.
func (s *TaskService) validate(ctx context.Context, db dbx.DBTX, in models.TaskInput) (*models.Category, error) {
	if n := utf8.RuneCountInString(in.Name); n < TaskNameMin || n > TaskNameMax {
		return nil, common.NewValidationError("name",
			fmt.Sprintf("Field must be between %d and %d characters long.", TaskNameMin, TaskNameMax))
	}

	if in.DueDate != nil && in.DueDate.Before(s.now()) {
		return nil, common.NewValidationError("due_date", "Due date cannot be in the past")
	}

	category, err := s.repomanager.Categories(db).GetByID(ctx, in.CategoryID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewValidationError("category_id", "Not a valid choice.")
		}
		return nil, fmt.Errorf("error loading category: %w", err)
	}
	return category, nil
}
