package repository

import "todoboard/internal/model"

// AssembleTree nests flat rows into a tree. Input slices must already be in
// display order; rows whose parent is missing are dropped.
func AssembleTree(folders []model.Folder, files []model.File, todos []model.Todo) model.Tree {
	fileIdx := make(map[string]int, len(files))
	for i := range files {
		files[i].Todos = make([]model.Todo, 0)
		fileIdx[files[i].ID] = i
	}
	for _, t := range todos {
		if i, ok := fileIdx[t.FileID]; ok {
			files[i].Todos = append(files[i].Todos, t)
		}
	}

	folderIdx := make(map[string]int, len(folders))
	tree := make(model.Tree, len(folders))
	for i, f := range folders {
		f.Files = make([]model.File, 0)
		tree[i] = f
		folderIdx[f.ID] = i
	}
	for _, f := range files {
		if i, ok := folderIdx[f.FolderID]; ok {
			tree[i].Files = append(tree[i].Files, f)
		}
	}
	return tree
}
