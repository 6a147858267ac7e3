package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"todoboard/internal/model"
	"todoboard/internal/repository"
)

//go:embed import_schema.json
var importSchemaJSON string

const importSchemaURL = "import_schema.json"

// ImportTodo is a todo created offline. Its id may be a number or a string.
type ImportTodo struct {
	ID        json.RawMessage `json:"id"`
	Text      string          `json:"text"`
	Completed bool            `json:"completed,omitempty"`
	Status    model.Status    `json:"status,omitempty"`
}

type ImportFile struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Todos []ImportTodo `json:"todos,omitempty"`
}

type ImportFolder struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	IsExpanded *bool        `json:"is_expanded,omitempty"`
	Files      []ImportFile `json:"files,omitempty"`
}

type ImportWorkspace struct {
	OpenFileIDs  []string `json:"open_file_ids,omitempty"`
	ActiveFileID *string  `json:"active_file_id,omitempty"`
	SidebarOpen  *bool    `json:"sidebar_open,omitempty"`
}

// ImportPayload is a tree kept locally before the user signed in.
type ImportPayload struct {
	Folders   []ImportFolder   `json:"folders"`
	Workspace *ImportWorkspace `json:"workspace,omitempty"`
}

// ImportResult maps the ids of the payload to the ids assigned by the store.
type ImportResult struct {
	Folders map[string]string `json:"folders"`
	Files   map[string]string `json:"files"`
	Todos   map[string]int64  `json:"todos"`
}

// SchemaError describes the first schema violation of a payload.
type SchemaError struct {
	Path    string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

func (e *SchemaError) Unwrap() error { return ErrInvalidPayload }

// ImportService moves a locally kept tree into the store.
type ImportService interface {
	// Import validates raw, creates every folder, file and todo with fresh
	// ids and, when the payload carries a workspace, opens the imported
	// files in it.
	Import(ctx context.Context, userID string, raw []byte) (*ImportResult, error)
}

type importService struct {
	schema     *jsonschema.Schema
	folders    repository.FolderRepository
	files      repository.FileRepository
	todos      repository.TodoRepository
	workspaces repository.WorkspaceRepository
	metrics    *Metrics
	log        *zap.Logger
}

func NewImportService(
	folders repository.FolderRepository,
	files repository.FileRepository,
	todos repository.TodoRepository,
	workspaces repository.WorkspaceRepository,
	metrics *Metrics,
	log *zap.Logger,
) (ImportService, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(importSchemaURL, strings.NewReader(importSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(importSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &importService{
		schema:     schema,
		folders:    folders,
		files:      files,
		todos:      todos,
		workspaces: workspaces,
		metrics:    metrics,
		log:        log.With(zap.String("component", "import")),
	}, nil
}

func (s *importService) Import(ctx context.Context, userID string, raw []byte) (*ImportResult, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	p, err := s.decode(raw)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{
		Folders: make(map[string]string),
		Files:   make(map[string]string),
		Todos:   make(map[string]int64),
	}
	clock := stamps{last: now().Truncate(time.Microsecond)}

	for _, fo := range p.Folders {
		expanded := true
		if fo.IsExpanded != nil {
			expanded = *fo.IsExpanded
		}
		at := clock.next()
		folder, err := s.folders.Create(ctx, &model.Folder{
			ID:         newID(),
			UserID:     userID,
			Name:       strings.TrimSpace(fo.Name),
			IsExpanded: expanded,
			CreatedAt:  at,
			UpdatedAt:  at,
		})
		if err != nil {
			return res, fmt.Errorf("import folder %s: %w", fo.ID, err)
		}
		res.Folders[fo.ID] = folder.ID

		for _, fi := range fo.Files {
			at := clock.next()
			file, err := s.files.Create(ctx, &model.File{
				ID:        newID(),
				FolderID:  folder.ID,
				UserID:    userID,
				Name:      strings.TrimSpace(fi.Name),
				CreatedAt: at,
				UpdatedAt: at,
			})
			if err != nil {
				return res, fmt.Errorf("import file %s: %w", fi.ID, err)
			}
			res.Files[fi.ID] = file.ID

			for _, it := range fi.Todos {
				at := clock.next()
				t := model.Todo{
					FileID:    file.ID,
					UserID:    userID,
					Text:      strings.TrimSpace(it.Text),
					Completed: it.Completed,
					Status:    it.Status,
					CreatedAt: at,
					UpdatedAt: at,
				}
				t = t.WithStatus(t.EffectiveStatus())
				todo, err := s.todos.Create(ctx, &t)
				if err != nil {
					return res, fmt.Errorf("import todo %s: %w", todoKey(it.ID), err)
				}
				res.Todos[todoKey(it.ID)] = todo.ID
				s.metrics.importedTodos.Inc()
			}
		}
	}

	if p.Workspace != nil {
		s.importWorkspace(ctx, userID, p.Workspace, res.Files)
	}

	s.log.Info("tree imported",
		zap.String("event", "import"),
		zap.String("user_id", userID),
		zap.Int("folders", len(res.Folders)),
		zap.Int("files", len(res.Files)),
		zap.Int("todos", len(res.Todos)),
	)
	return res, nil
}

func (s *importService) decode(raw []byte) (*ImportPayload, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &SchemaError{Message: fmt.Sprintf("malformed json: %v", err)}
	}
	if err := s.schema.Validate(doc); err != nil {
		return nil, schemaError(err)
	}
	var p ImportPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &SchemaError{Message: err.Error()}
	}
	if err := uniqueIDs(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// uniqueIDs rejects payloads where two folders, two files or two todos share
// a local id; the returned mapping is keyed by those ids. Todo ids 1 and "1"
// collide.
func uniqueIDs(p *ImportPayload) error {
	folders := make(map[string]struct{})
	files := make(map[string]struct{})
	todos := make(map[string]struct{})

	claim := func(seen map[string]struct{}, id, path string) error {
		if _, dup := seen[id]; dup {
			return &SchemaError{Path: path, Message: fmt.Sprintf("duplicate id %q", id)}
		}
		seen[id] = struct{}{}
		return nil
	}

	for i, fo := range p.Folders {
		if err := claim(folders, fo.ID, fmt.Sprintf("/folders/%d/id", i)); err != nil {
			return err
		}
		for j, fi := range fo.Files {
			if err := claim(files, fi.ID, fmt.Sprintf("/folders/%d/files/%d/id", i, j)); err != nil {
				return err
			}
			for k, it := range fi.Todos {
				if err := claim(todos, todoKey(it.ID), fmt.Sprintf("/folders/%d/files/%d/todos/%d/id", i, j, k)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// stamps hands out strictly increasing creation times so imported rows keep
// payload order under ORDER BY created_at. Steps are one microsecond, the
// TIMESTAMPTZ resolution.
type stamps struct {
	last time.Time
}

func (s *stamps) next() time.Time {
	s.last = s.last.Add(time.Microsecond)
	return s.last
}

// importWorkspace opens the imported files the client had open. Ids that
// were not part of the payload are dropped. Failures are logged only.
func (s *importService) importWorkspace(ctx context.Context, userID string, in *ImportWorkspace, files map[string]string) {
	stored, err := s.workspaces.Load(ctx, userID)
	if err != nil {
		s.log.Warn("workspace read failed", zap.String("event", "import"), zap.Error(err))
		return
	}
	if stored == nil {
		stored = model.NewWorkspace(userID)
	}

	ws := stored.Clone()
	for _, old := range in.OpenFileIDs {
		if id, ok := files[old]; ok {
			ws.Open(id)
		}
	}
	if in.ActiveFileID != nil {
		if id, ok := files[*in.ActiveFileID]; ok && ws.IsOpen(id) {
			ws.SetActive(id)
		}
	}
	if in.SidebarOpen != nil {
		ws.SidebarOpen = *in.SidebarOpen
	}
	if ws.Equal(stored) {
		return
	}
	ws.UpdatedAt = now()
	if err := s.workspaces.Save(ctx, ws); err != nil {
		s.log.Warn("workspace save failed", zap.String("event", "import"), zap.Error(err))
	}
}

// schemaError reduces a validation error to its first leaf cause.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &SchemaError{Message: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &SchemaError{Path: ve.InstanceLocation, Message: ve.Message}
}

func todoKey(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
