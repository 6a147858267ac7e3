package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"todoboard/internal/model"
	"todoboard/internal/repository"
)

// Session is what a client needs to restore its view after sign-in: the
// authoritative tree and the reconciled workspace on top of it.
type Session struct {
	Folders      model.Tree   `json:"folders"`
	OpenFiles    []model.File `json:"open_files"`
	ActiveFileID *string      `json:"active_file_id"`
	SidebarOpen  bool         `json:"sidebar_open"`
}

// WorkspaceService manages the per-user session: open tabs, the active
// file and the sidebar flag.
type WorkspaceService interface {
	// Load fetches the user's tree and reconciles the persisted workspace
	// against it. The reconciled workspace is written back when it changed.
	Load(ctx context.Context, userID string) (*Session, error)
	Open(ctx context.Context, userID, fileID string) (*model.Workspace, error)
	Close(ctx context.Context, userID, fileID string) (*model.Workspace, error)
	Activate(ctx context.Context, userID, fileID string) (*model.Workspace, error)
	ToggleSidebar(ctx context.Context, userID string) (*model.Workspace, error)
	// Forget drops deleted files from the workspace.
	Forget(ctx context.Context, userID string, fileIDs ...string) error
	// Reset removes the persisted workspace on sign-out.
	Reset(ctx context.Context, userID string) error
}

type workspaceService struct {
	folders    repository.FolderRepository
	files      repository.FileRepository
	workspaces repository.WorkspaceRepository
	metrics    *Metrics
	log        *zap.Logger
}

func NewWorkspaceService(
	folders repository.FolderRepository,
	files repository.FileRepository,
	workspaces repository.WorkspaceRepository,
	metrics *Metrics,
	log *zap.Logger,
) WorkspaceService {
	return &workspaceService{
		folders:    folders,
		files:      files,
		workspaces: workspaces,
		metrics:    metrics,
		log:        log.With(zap.String("component", "workspace")),
	}
}

// Reconcile returns a copy of w that only references files present in tree,
// and the number of open entries it dropped. Open ids keep their order and
// lose duplicates. The active file survives if it still exists and is open;
// otherwise the first surviving open file becomes active, or none.
func Reconcile(w *model.Workspace, tree model.Tree) (*model.Workspace, int) {
	out := w.Clone()
	out.OpenFileIDs = make([]string, 0, len(w.OpenFileIDs))

	seen := make(map[string]struct{}, len(w.OpenFileIDs))
	dropped := 0
	for _, id := range w.OpenFileIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := tree.FindFile(id); !ok {
			dropped++
			continue
		}
		out.OpenFileIDs = append(out.OpenFileIDs, id)
	}

	switch {
	case out.IsOpen(out.Active()):
	case len(out.OpenFileIDs) > 0:
		out.SetActive(out.OpenFileIDs[0])
	default:
		out.SetActive("")
	}
	return out, dropped
}

func (s *workspaceService) Load(ctx context.Context, userID string) (*Session, error) {
	ctx, span := otel.Tracer("todoboard/service").Start(ctx, "WorkspaceService.Load")
	defer span.End()

	if userID == "" {
		return nil, ErrUserRequired
	}

	tree, err := s.folders.Tree(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load tree")
		return nil, fmt.Errorf("load tree: %w", err)
	}

	persisted, err := s.workspaces.Load(ctx, userID)
	readFailed := err != nil
	if readFailed {
		s.log.Warn("workspace read failed, starting empty",
			zap.String("event", "workspace_load"),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
	if persisted == nil {
		persisted = model.NewWorkspace(userID)
	}

	ws, dropped := Reconcile(persisted, tree)
	s.metrics.sessionLoads.Inc()
	if dropped > 0 {
		s.metrics.staleOpenFiles.Add(float64(dropped))
	}
	span.SetAttributes(
		attribute.Int("workspace.open_files", len(ws.OpenFileIDs)),
		attribute.Int("workspace.dropped", dropped),
	)

	if !readFailed && !ws.Equal(persisted) {
		ws.UpdatedAt = now()
		if err := s.workspaces.Save(ctx, ws); err != nil {
			s.log.Error("workspace save failed",
				zap.String("event", "workspace_reconcile"),
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	session := &Session{
		Folders:      tree,
		OpenFiles:    make([]model.File, 0, len(ws.OpenFileIDs)),
		ActiveFileID: ws.ActiveFileID,
		SidebarOpen:  ws.SidebarOpen,
	}
	for _, id := range ws.OpenFileIDs {
		f, _ := tree.FindFile(id)
		session.OpenFiles = append(session.OpenFiles, *f)
	}
	return session, nil
}

func (s *workspaceService) Open(ctx context.Context, userID, fileID string) (*model.Workspace, error) {
	if err := requireIDs(userID, fileID); err != nil {
		return nil, err
	}
	if _, err := s.files.FindByID(ctx, userID, fileID); err != nil {
		return nil, notFound(err)
	}
	return s.mutate(ctx, userID, func(w *model.Workspace) error {
		w.Open(fileID)
		return nil
	})
}

func (s *workspaceService) Close(ctx context.Context, userID, fileID string) (*model.Workspace, error) {
	if err := requireIDs(userID, fileID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(w *model.Workspace) error {
		w.Close(fileID)
		return nil
	})
}

func (s *workspaceService) Activate(ctx context.Context, userID, fileID string) (*model.Workspace, error) {
	if err := requireIDs(userID, fileID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(w *model.Workspace) error {
		if !w.IsOpen(fileID) {
			return ErrNotOpen
		}
		w.SetActive(fileID)
		return nil
	})
}

func (s *workspaceService) ToggleSidebar(ctx context.Context, userID string) (*model.Workspace, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return s.mutate(ctx, userID, func(w *model.Workspace) error {
		w.SidebarOpen = !w.SidebarOpen
		return nil
	})
}

func (s *workspaceService) Forget(ctx context.Context, userID string, fileIDs ...string) error {
	if userID == "" {
		return ErrUserRequired
	}
	if len(fileIDs) == 0 {
		return nil
	}
	_, err := s.mutate(ctx, userID, func(w *model.Workspace) error {
		w.Remove(fileIDs...)
		return nil
	})
	return err
}

func (s *workspaceService) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUserRequired
	}
	if err := s.workspaces.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	return nil
}

// mutate applies fn to the stored workspace and saves it if anything changed.
func (s *workspaceService) mutate(ctx context.Context, userID string, fn func(*model.Workspace) error) (*model.Workspace, error) {
	stored, err := s.workspaces.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	if stored == nil {
		stored = model.NewWorkspace(userID)
	}

	ws := stored.Clone()
	if err := fn(ws); err != nil {
		return nil, err
	}
	if ws.Equal(stored) {
		return ws, nil
	}

	ws.UpdatedAt = now()
	if err := s.workspaces.Save(ctx, ws); err != nil {
		return nil, fmt.Errorf("save workspace: %w", err)
	}
	return ws, nil
}
