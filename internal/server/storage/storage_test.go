package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vova4o/gonotes/internal/server/models"
	"github.com/vova4o/gonotes/package/logger"
)

func setupTestDB(t *testing.T) (*Storage, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	storage := &Storage{
		db:     db,
		logger: logger.NewLogger("error"),
	}

	return storage, mock, func() {
		db.Close()
	}
}

var noteCols = []string{"id", "user_id", "title", "content", "color", "is_favorite", "timestamp", "created_at", "updated_at"}

func TestCreateTables(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name: "successful creation",
			mockSetup: func(mock sqlmock.Sqlmock) {
				// Ожидаем создание таблиц с точным соответствием запросов
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users \(.*id BIGSERIAL PRIMARY KEY.*\)`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS notes \(.*user_id BIGINT NOT NULL REFERENCES users.*\)`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes\(user_id\)`).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
		},
		{
			name: "table creation error",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users \(.*\)`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
		{
			name: "index creation error",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users \(.*\)`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS notes \(.*\)`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_notes_user_id`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, mock, teardown := setupTestDB(t)
			defer teardown()

			tt.mockSetup(mock)

			err := storage.createTables(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateUser(t *testing.T) {
	storage, mock, teardown := setupTestDB(t)
	defer teardown()

	tests := []struct {
		name     string
		mockFunc func()
		wantID   int64
		wantErr  error
	}{
		{
			name: "successful creation",
			mockFunc: func() {
				mock.ExpectQuery("INSERT INTO users").
					WithArgs("testuser", "testhash", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
			},
			wantID: 1,
		},
		{
			name: "duplicate username",
			mockFunc: func() {
				mock.ExpectQuery("INSERT INTO users").
					WithArgs("testuser", "testhash", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnError(&pq.Error{Code: uniqueViolation})
			},
			wantErr: ErrUserExists,
		},
		{
			name: "database error",
			mockFunc: func() {
				mock.ExpectQuery("INSERT INTO users").
					WithArgs("testuser", "testhash", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockFunc()

			id, err := storage.CreateUser(context.Background(), models.User{Username: "testuser", PasswordHash: "testhash"})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantID, id)
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUserByName(t *testing.T) {
	storage, mock, teardown := setupTestDB(t)
	defer teardown()

	mock.ExpectQuery("SELECT id, username, password_hash FROM users").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash"}).AddRow(5, "alice", "hash"))

	user, err := storage.FindUserByName(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.UserID)
	assert.Equal(t, "hash", user.PasswordHash)

	mock.ExpectQuery("SELECT id, username, password_hash FROM users").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	user, err = storage.FindUserByName(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, user)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListNotes(t *testing.T) {
	storage, mock, teardown := setupTestDB(t)
	defer teardown()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		mockFunc  func()
		wantCount int
		wantErr   bool
	}{
		{
			name: "successful read",
			mockFunc: func() {
				rows := sqlmock.NewRows(noteCols).
					AddRow(2, 1, "b", "", "RED", true, 200, created, created).
					AddRow(1, 1, "a", "x", "DEFAULT", false, 100, created, created)
				mock.ExpectQuery("SELECT (.+) FROM notes WHERE user_id").
					WithArgs(int64(1)).
					WillReturnRows(rows)
			},
			wantCount: 2,
		},
		{
			name: "no notes",
			mockFunc: func() {
				mock.ExpectQuery("SELECT (.+) FROM notes WHERE user_id").
					WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows(noteCols))
			},
			wantCount: 0,
		},
		{
			name: "query error",
			mockFunc: func() {
				mock.ExpectQuery("SELECT (.+) FROM notes WHERE user_id").
					WithArgs(int64(1)).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockFunc()

			notes, err := storage.ListNotes(context.Background(), 1)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, notes)
			assert.Len(t, notes, tt.wantCount)
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNote(t *testing.T) {
	storage, mock, teardown := setupTestDB(t)
	defer teardown()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	note := models.Note{UserID: 1, Title: "t", Content: "c", Color: "BLUE", Timestamp: 42}

	mock.ExpectQuery("INSERT INTO notes").
		WithArgs(int64(1), "t", "c", "BLUE", false, int64(42), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(noteCols).AddRow(9, 1, "t", "c", "BLUE", false, 42, created, created))

	saved, err := storage.CreateNote(context.Background(), note)
	require.NoError(t, err)
	assert.Equal(t, int64(9), saved.ID)
	assert.Equal(t, created, saved.CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNote(t *testing.T) {
	storage, mock, teardown := setupTestDB(t)
	defer teardown()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	note := models.Note{ID: 9, UserID: 1, Title: "new", Content: "c", Color: "RED", IsFavorite: true, Timestamp: 50}

	mock.ExpectQuery("UPDATE notes SET").
		WithArgs("new", "c", "RED", true, int64(50), sqlmock.AnyArg(), int64(9), int64(1)).
		WillReturnRows(sqlmock.NewRows(noteCols).AddRow(9, 1, "new", "c", "RED", true, 50, created, created.Add(time.Hour)))

	saved, err := storage.UpdateNote(context.Background(), note)
	require.NoError(t, err)
	assert.Equal(t, "new", saved.Title)
	assert.True(t, saved.IsFavorite)

	// чужая или удалённая заметка
	mock.ExpectQuery("UPDATE notes SET").
		WithArgs("new", "c", "RED", true, int64(50), sqlmock.AnyArg(), int64(9), int64(1)).
		WillReturnError(sql.ErrNoRows)

	_, err = storage.UpdateNote(context.Background(), note)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNote(t *testing.T) {
	storage, mock, teardown := setupTestDB(t)
	defer teardown()

	tests := []struct {
		name     string
		mockFunc func()
		wantErr  error
	}{
		{
			name: "successful deletion",
			mockFunc: func() {
				mock.ExpectExec("DELETE FROM notes").
					WithArgs(int64(9), int64(1)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "not found",
			mockFunc: func() {
				mock.ExpectExec("DELETE FROM notes").
					WithArgs(int64(9), int64(1)).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: ErrNotFound,
		},
		{
			name: "database error",
			mockFunc: func() {
				mock.ExpectExec("DELETE FROM notes").
					WithArgs(int64(9), int64(1)).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockFunc()

			err := storage.DeleteNote(context.Background(), 1, 9)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}
