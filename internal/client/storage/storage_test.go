package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vova4o/gonotes/package/logger"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	// Используем временный файл для тестовой БД
	tmpDB := filepath.Join(t.TempDir(), "test_notes.db")
	log := logger.NewLogger("error")

	storage, err := NewStorage(tmpDB, log)
	require.NoError(t, err)
	require.NotNil(t, storage)

	cleanup := func() {
		storage.Close()
		os.Remove(tmpDB)
	}

	return storage, cleanup
}

func TestNewStorage(t *testing.T) {
	tests := []struct {
		name        string
		dbPath      string
		expectError bool
	}{
		{
			name:        "successful creation with custom path",
			dbPath:      filepath.Join(t.TempDir(), "custom.db"),
			expectError: false,
		},
		{
			name:        "invalid path",
			dbPath:      "/invalid/path/db.db",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.NewLogger("error")
			storage, err := NewStorage(tt.dbPath, log)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, storage)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, storage)
				storage.Close()
			}
		})
	}
}

func TestToken(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()

	token, err := storage.GetToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	loggedIn, err := storage.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn)

	tests := []struct {
		name  string
		token string
	}{
		{name: "add new token", token: "test_token_1"},
		{name: "replace existing token", token: "test_token_2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, storage.SaveToken(ctx, tt.token))
			got, err := storage.GetToken(ctx)
			assert.NoError(t, err)
			assert.Equal(t, tt.token, got)
		})
	}

	loggedIn, err = storage.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, loggedIn)
}

func TestClearTokenForgetsUsername(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, storage.SaveToken(ctx, "abc"))
	require.NoError(t, storage.SaveUsername(ctx, "alice@example.com"))
	require.NoError(t, storage.SaveLanguage(ctx, "ja"))

	username, err := storage.GetUsername(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", username)

	require.NoError(t, storage.ClearToken(ctx))

	token, err := storage.GetToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	username, err = storage.GetUsername(ctx)
	require.NoError(t, err)
	assert.Empty(t, username)

	// язык переживает выход из аккаунта
	lang, err := storage.GetLanguage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ja", lang)
}

func TestStorageErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	storage := &Storage{db: db, logger: logger.NewLogger("error")}
	ctx := context.Background()

	mock.ExpectQuery("SELECT value FROM preferences WHERE key = ?").
		WithArgs(keyToken).
		WillReturnError(sql.ErrConnDone)
	_, err = storage.GetToken(ctx)
	assert.ErrorIs(t, err, sql.ErrConnDone)

	mock.ExpectQuery("SELECT value FROM preferences WHERE key = ?").
		WithArgs(keyToken).
		WillReturnError(sql.ErrConnDone)
	loggedIn, err := storage.IsLoggedIn(ctx)
	assert.Error(t, err)
	assert.False(t, loggedIn)

	mock.ExpectExec("INSERT INTO preferences").
		WithArgs(keyUsername, "bob").
		WillReturnError(sql.ErrConnDone)
	assert.Error(t, storage.SaveUsername(ctx, "bob"))

	mock.ExpectExec("DELETE FROM preferences").
		WithArgs(keyToken, keyUsername).
		WillReturnError(sql.ErrConnDone)
	assert.Error(t, storage.ClearToken(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTablesError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	storage := &Storage{db: db, logger: logger.NewLogger("error")}

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS preferences`).WillReturnError(sql.ErrConnDone)
	assert.Error(t, storage.createTables(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
