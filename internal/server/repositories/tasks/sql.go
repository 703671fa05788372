// Package tasks stores tasks. Rows are always addressed by (id, user_id):
// a task that exists but belongs to someone else is reported as not found.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

const selectTask = `
	SELECT t.id, t.user_id, t.category_id, c.name, t.name, t.description, t.due_date, t.completed, t.created_at
	FROM tasks t
	JOIN categories c ON c.id = t.category_id`

// Tasks without a due date sort after all dated ones in every view.
const (
	orderDueAsc  = `ORDER BY t.due_date IS NULL, t.due_date ASC, t.id ASC`
	orderDueDesc = `ORDER BY t.due_date IS NULL, t.due_date DESC, t.id ASC`
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// ListByUser returns the user's tasks. Pending and all are ordered by due
// date ascending, completed by due date descending.
func (r *SQLRepository) ListByUser(ctx context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error) {
	var query string
	switch filter {
	case models.FilterPending:
		query = selectTask + ` WHERE t.user_id = $1 AND t.completed = FALSE ` + orderDueAsc
	case models.FilterCompleted:
		query = selectTask + ` WHERE t.user_id = $1 AND t.completed = TRUE ` + orderDueDesc
	case models.FilterAll:
		query = selectTask + ` WHERE t.user_id = $1 ` + orderDueAsc
	default:
		return nil, fmt.Errorf("unknown task filter %q", filter)
	}

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Get(ctx context.Context, id, userID int64) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, selectTask+` WHERE t.id = $1 AND t.user_id = $2`, id, userID)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// Create inserts a pending task owned by userID. The returned task has no
// CategoryName.
func (r *SQLRepository) Create(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (name, description, due_date, completed, category_id, user_id, created_at)
		 VALUES ($1, $2, $3, FALSE, $4, $5, $6)
		 RETURNING id`

	t := &models.Task{
		UserID:      userID,
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: in.Description,
		DueDate:     utc(in.DueDate),
		CreatedAt:   time.Now().UTC(),
	}

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Description, nullTime(t.DueDate), t.CategoryID, t.UserID, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// Update overwrites the editable fields of the task. Completion state is
// left alone.
func (r *SQLRepository) Update(ctx context.Context, id, userID int64, in models.TaskInput) error {
	query :=
		`UPDATE tasks SET name = $1, description = $2, due_date = $3, category_id = $4
		 WHERE id = $5 AND user_id = $6`

	res, err := r.db.ExecContext(ctx, query,
		in.Name, in.Description, nullTime(utc(in.DueDate)), in.CategoryID, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// ToggleComplete flips the completed flag and returns its new value.
func (r *SQLRepository) ToggleComplete(ctx context.Context, id, userID int64) (bool, error) {
	query :=
		`UPDATE tasks SET completed = NOT completed
		 WHERE id = $1 AND user_id = $2
		 RETURNING completed`

	var completed bool
	if err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return completed, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	var (
		t   models.Task
		due sql.NullTime
	)
	err := s.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.CategoryName, &t.Name, &t.Description, &due, &t.Completed, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return &t, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
