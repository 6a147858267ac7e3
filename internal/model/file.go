package model

import "time"

// File is a named list of todos living in exactly one folder.
type File struct {
	ID        string    `json:"id"`
	FolderID  string    `json:"folder_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Todos     []Todo    `json:"todos"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tree is the authoritative folder → file → todo hierarchy of one user.
type Tree []Folder

// FindFile searches every folder for the file with the given id.
func (t Tree) FindFile(id string) (*File, bool) {
	for i := range t {
		if f, ok := t[i].FindFile(id); ok {
			return f, true
		}
	}
	return nil, false
}
