package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoboard/internal/model"
)

func TestFilePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	now := time.Now().UTC()
	f := &model.File{ID: "a", FolderID: "f1", UserID: "u1", Name: "sprint", CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery("INSERT INTO files").
		WithArgs(f.ID, f.FolderID, f.UserID, f.Name, f.CreatedAt, f.UpdatedAt).
		WillReturnRows(sqlmock.NewRows(fileCols).AddRow("a", "f1", "u1", "sprint", now, now))

	got, err := repo.Create(context.Background(), f)

	assert.NoError(t, err)
	assert.Equal(t, "f1", got.FolderID)
	assert.NotNil(t, got.Todos)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("with todos", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = \\$1 AND user_id = \\$2").
			WithArgs("a", "u1").
			WillReturnRows(sqlmock.NewRows(fileCols).AddRow("a", "f1", "u1", "sprint", now, now))
		mock.ExpectQuery("SELECT (.+) FROM todos WHERE file_id = \\$1 AND user_id = \\$2 ORDER BY id").
			WithArgs("a", "u1").
			WillReturnRows(sqlmock.NewRows(todoCols).
				AddRow(7, "a", "u1", "ship", false, "new", now, now))

		f, err := repo.FindByID(ctx, "u1", "a")

		require.NoError(t, err)
		require.Len(t, f.Todos, 1)
		assert.Equal(t, int64(7), f.Todos[0].ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = \\$1").
			WithArgs("zz", "u1").
			WillReturnError(sql.ErrNoRows)

		f, err := repo.FindByID(ctx, "u1", "zz")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, f)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_ListIDsByFolder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)

	mock.ExpectQuery("SELECT id FROM files WHERE folder_id = \\$1 AND user_id = \\$2").
		WithArgs("f1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))

	ids, err := repo.ListIDsByFolder(context.Background(), "u1", "f1")

	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_Rename(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("UPDATE files SET name = \\$3").
			WithArgs("a", "u1", "renamed").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = \\$1").
			WithArgs("a", "u1").
			WillReturnRows(sqlmock.NewRows(fileCols).AddRow("a", "f1", "u1", "renamed", now, now))
		mock.ExpectQuery("SELECT (.+) FROM todos WHERE file_id = \\$1").
			WithArgs("a", "u1").
			WillReturnRows(sqlmock.NewRows(todoCols))

		f, err := repo.Rename(ctx, "u1", "a", "renamed")

		assert.NoError(t, err)
		assert.Equal(t, "renamed", f.Name)
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE files SET name = \\$3").
			WithArgs("zz", "u1", "renamed").
			WillReturnResult(sqlmock.NewResult(0, 0))

		f, err := repo.Rename(ctx, "u1", "zz", "renamed")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, f)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_TouchDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE files SET updated_at = now\\(\\)").
		WithArgs("a", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Touch(ctx, "u1", "a"))

	mock.ExpectExec("DELETE FROM files WHERE id = \\$1 AND user_id = \\$2").
		WithArgs("a", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, "u1", "a"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
