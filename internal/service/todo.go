package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"todoboard/internal/model"
	"todoboard/internal/repository"
)

// BoardColumn is one status lane of the kanban board.
type BoardColumn struct {
	Status model.Status `json:"status"`
	Todos  []model.Todo `json:"todos"`
}

// Board groups the todos of a file by status.
type Board struct {
	FileID  string        `json:"file_id"`
	Query   string        `json:"query"`
	Total   int           `json:"total"`
	Columns []BoardColumn `json:"columns"`
}

// TodoService manages todos. Every mutation bumps the parent file's
// updated_at; a failed bump is logged and does not fail the call.
type TodoService interface {
	Add(ctx context.Context, userID, fileID, text string) (*model.Todo, error)
	// Toggle moves a completed todo back to new and anything else to completed.
	Toggle(ctx context.Context, userID string, id int64) (*model.Todo, error)
	SetStatus(ctx context.Context, userID string, id int64, status string) (*model.Todo, error)
	UpdateText(ctx context.Context, userID string, id int64, text string) (*model.Todo, error)
	Delete(ctx context.Context, userID string, id int64) error
	// Board returns the file's todos whose text contains query, ignoring
	// case, grouped by status in insertion order.
	Board(ctx context.Context, userID, fileID, query string) (*Board, error)
}

type todoService struct {
	files repository.FileRepository
	todos repository.TodoRepository
	log   *zap.Logger
}

func NewTodoService(files repository.FileRepository, todos repository.TodoRepository, log *zap.Logger) TodoService {
	return &todoService{
		files: files,
		todos: todos,
		log:   log.With(zap.String("component", "todos")),
	}
}

func (s *todoService) Add(ctx context.Context, userID, fileID, text string) (*model.Todo, error) {
	if err := requireIDs(userID, fileID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidText
	}
	if _, err := s.files.FindByID(ctx, userID, fileID); err != nil {
		return nil, notFound(err)
	}

	ts := now()
	t := model.Todo{FileID: fileID, UserID: userID, Text: text, CreatedAt: ts, UpdatedAt: ts}.WithStatus(model.StatusNew)
	created, err := s.todos.Create(ctx, &t)
	if err != nil {
		return nil, err
	}
	s.touch(ctx, userID, fileID)
	return created, nil
}

func (s *todoService) Toggle(ctx context.Context, userID string, id int64) (*model.Todo, error) {
	cur, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	next := model.StatusCompleted
	if cur.EffectiveStatus() == model.StatusCompleted {
		next = model.StatusNew
	}
	return s.update(ctx, userID, cur, model.TodoUpdate{Status: &next})
}

func (s *todoService) SetStatus(ctx context.Context, userID string, id int64, status string) (*model.Todo, error) {
	st, err := model.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	cur, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, userID, cur, model.TodoUpdate{Status: &st})
}

func (s *todoService) UpdateText(ctx context.Context, userID string, id int64, text string) (*model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidText
	}
	cur, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, userID, cur, model.TodoUpdate{Text: &text})
}

func (s *todoService) Delete(ctx context.Context, userID string, id int64) error {
	cur, err := s.find(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.todos.Delete(ctx, userID, id); err != nil {
		return notFound(err)
	}
	s.touch(ctx, userID, cur.FileID)
	return nil
}

func (s *todoService) Board(ctx context.Context, userID, fileID, query string) (*Board, error) {
	if err := requireIDs(userID, fileID); err != nil {
		return nil, err
	}
	todos, err := s.todos.ListByFile(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	if len(todos) == 0 {
		// An empty list does not tell a missing file from an empty one.
		if _, err := s.files.FindByID(ctx, userID, fileID); err != nil {
			return nil, notFound(err)
		}
	}
	return GroupByStatus(fileID, query, todos), nil
}

// GroupByStatus builds the board for todos matching query.
func GroupByStatus(fileID, query string, todos []model.Todo) *Board {
	query = strings.TrimSpace(query)
	needle := strings.ToLower(query)

	b := &Board{FileID: fileID, Query: query, Columns: make([]BoardColumn, len(model.Statuses))}
	index := make(map[model.Status]int, len(model.Statuses))
	for i, st := range model.Statuses {
		b.Columns[i] = BoardColumn{Status: st, Todos: []model.Todo{}}
		index[st] = i
	}

	for _, t := range todos {
		if needle != "" && !strings.Contains(strings.ToLower(t.Text), needle) {
			continue
		}
		t = t.WithStatus(t.EffectiveStatus())
		i := index[t.Status]
		b.Columns[i].Todos = append(b.Columns[i].Todos, t)
		b.Total++
	}
	return b
}

func (s *todoService) find(ctx context.Context, userID string, id int64) (*model.Todo, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if id <= 0 {
		return nil, ErrIDRequired
	}
	t, err := s.todos.FindByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (s *todoService) update(ctx context.Context, userID string, cur *model.Todo, upd model.TodoUpdate) (*model.Todo, error) {
	t, err := s.todos.Update(ctx, userID, cur.ID, upd)
	if err != nil {
		return nil, notFound(err)
	}
	s.touch(ctx, userID, cur.FileID)
	return t, nil
}

func (s *todoService) touch(ctx context.Context, userID, fileID string) {
	if err := s.files.Touch(ctx, userID, fileID); err != nil {
		s.log.Warn("file touch failed",
			zap.String("event", "file_touch"),
			zap.String("file_id", fileID),
			zap.Error(err),
		)
	}
}
