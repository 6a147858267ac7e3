package model

import "time"

// Folder groups files. Deleting a folder removes its files and their todos.
type Folder struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	IsExpanded bool      `json:"is_expanded"`
	Files      []File    `json:"files"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FolderUpdate carries the mutable folder columns. Nil fields are left untouched.
type FolderUpdate struct {
	Name       *string
	IsExpanded *bool
}

// FindFile returns the file with the given id inside the folder, if any.
func (f *Folder) FindFile(id string) (*File, bool) {
	for i := range f.Files {
		if f.Files[i].ID == id {
			return &f.Files[i], true
		}
	}
	return nil, false
}
