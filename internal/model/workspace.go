package model

import (
	"slices"
	"time"
)

// Workspace is the per-user session state: which files are open as tabs,
// which one is active and whether the sidebar is shown.
type Workspace struct {
	UserID       string    `json:"user_id"`
	OpenFileIDs  []string  `json:"open_file_ids"`
	ActiveFileID *string   `json:"active_file_id"`
	SidebarOpen  bool      `json:"sidebar_open"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewWorkspace returns the state of a user who never opened anything.
func NewWorkspace(userID string) *Workspace {
	return &Workspace{UserID: userID, OpenFileIDs: []string{}, SidebarOpen: true}
}

// IsOpen reports whether the file is among the open tabs.
func (w *Workspace) IsOpen(fileID string) bool {
	return slices.Contains(w.OpenFileIDs, fileID)
}

// Active returns the active file id or "".
func (w *Workspace) Active() string {
	if w.ActiveFileID == nil {
		return ""
	}
	return *w.ActiveFileID
}

// SetActive sets the active file; an empty id clears it.
func (w *Workspace) SetActive(fileID string) {
	if fileID == "" {
		w.ActiveFileID = nil
		return
	}
	id := fileID
	w.ActiveFileID = &id
}

// Open appends the file to the open tabs if missing and makes it active.
func (w *Workspace) Open(fileID string) {
	if !w.IsOpen(fileID) {
		w.OpenFileIDs = append(w.OpenFileIDs, fileID)
	}
	w.SetActive(fileID)
}

// Close removes the file from the open tabs. Closing the active file makes
// the last remaining tab active.
func (w *Workspace) Close(fileID string) {
	w.Remove(fileID)
}

// Remove drops every given file from the open tabs. If the active file is
// among them, the last remaining tab becomes active, or none.
func (w *Workspace) Remove(fileIDs ...string) {
	if len(fileIDs) == 0 {
		return
	}
	activeRemoved := w.ActiveFileID != nil && slices.Contains(fileIDs, *w.ActiveFileID)
	kept := make([]string, 0, len(w.OpenFileIDs))
	for _, id := range w.OpenFileIDs {
		if !slices.Contains(fileIDs, id) {
			kept = append(kept, id)
		}
	}
	w.OpenFileIDs = kept
	if activeRemoved {
		if len(kept) > 0 {
			w.SetActive(kept[len(kept)-1])
		} else {
			w.SetActive("")
		}
	}
}

// Clone returns a deep copy.
func (w *Workspace) Clone() *Workspace {
	c := *w
	c.OpenFileIDs = slices.Clone(w.OpenFileIDs)
	if w.ActiveFileID != nil {
		c.SetActive(*w.ActiveFileID)
	}
	return &c
}

// Equal reports whether two workspaces hold the same session state.
func (w *Workspace) Equal(o *Workspace) bool {
	return w.SidebarOpen == o.SidebarOpen &&
		w.Active() == o.Active() &&
		slices.Equal(w.OpenFileIDs, o.OpenFileIDs)
}
