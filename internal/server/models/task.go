package models

import "time"

// Task is a unit of work owned by exactly one user.
// CategoryName is filled by read queries that join the category.
type Task struct {
	ID           int64
	UserID       int64
	CategoryID   int64
	CategoryName string
	Name         string
	Description  string
	DueDate      *time.Time
	Completed    bool
	CreatedAt    time.Time
}

// TimeLeft returns the time remaining until the due date (negative once
// overdue) and false when the task has no due date.
func (t Task) TimeLeft(now time.Time) (time.Duration, bool) {
	if t.DueDate == nil {
		return 0, false
	}
	return t.DueDate.Sub(now), true
}

// Overdue reports whether a pending task is past its due date.
func (t Task) Overdue(now time.Time) bool {
	left, ok := t.TimeLeft(now)
	return ok && !t.Completed && left < 0
}

// TaskInput carries the editable task fields.
type TaskInput struct {
	CategoryID  int64
	Name        string
	Description string
	DueDate     *time.Time
}

// TaskFilter selects which of a user's tasks are listed.
type TaskFilter string

const (
	FilterPending   TaskFilter = "pending"
	FilterCompleted TaskFilter = "completed"
	FilterAll       TaskFilter = "all"
)
