package model

import (
	"fmt"
	"time"
)

// Status is the workflow stage of a todo.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists the workflow stages in board order.
var Statuses = []Status{StatusNew, StatusInProgress, StatusCompleted}

// ParseStatus validates a raw status value.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusNew, StatusInProgress, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Todo is a single work item. Status is authoritative; Completed mirrors
// whether Status is StatusCompleted.
type Todo struct {
	ID        int64     `json:"id"`
	FileID    string    `json:"file_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveStatus resolves the stage of a todo, falling back to the legacy
// completed flag for rows written before status existed.
func (t Todo) EffectiveStatus() Status {
	if t.Status != "" {
		return t.Status
	}
	if t.Completed {
		return StatusCompleted
	}
	return StatusNew
}

// WithStatus returns a copy of t moved to s with Completed kept in step.
func (t Todo) WithStatus(s Status) Todo {
	t.Status = s
	t.Completed = s == StatusCompleted
	return t
}

// TodoUpdate carries the mutable todo columns. Nil fields are left untouched.
type TodoUpdate struct {
	Text   *string
	Status *Status
}
