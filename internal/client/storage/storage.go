package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/vova4o/gonotes/package/logger"
)

// Ключи в таблице preferences
const (
	keyToken    = "auth_token"
	keyUsername = "username"
	keyLanguage = "app_language"
)

// Storage struct for storage
type Storage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewStorage создает новое хранилище и инициализирует базу данных SQLite
func NewStorage(dbPath string, logger *logger.Logger) (*Storage, error) {
	if dbPath == "" {
		dbPath = "notes.db"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %v", err)
	}

	storage := &Storage{
		db:     db,
		logger: logger,
	}

	if err := storage.createTables(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %v", err)
	}

	logger.Info("SQLite database initialized successfully")
	return storage, nil
}

func (s *Storage) createTables(ctx context.Context) error {
	createTableQuery := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.ExecContext(ctx, createTableQuery)
	return err
}

// Close закрывает соединение с базой данных
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) put(ctx context.Context, key, value string) error {
	query := `INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	_, err := s.db.ExecContext(ctx, query, key, value)
	if err != nil {
		s.logger.Error("Failed to save " + key + ": " + err.Error())
		return err
	}
	return nil
}

func (s *Storage) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		s.logger.Error("Failed to read " + key + ": " + err.Error())
		return "", err
	}
	return value, nil
}

// SaveToken сохраняет токен доступа
func (s *Storage) SaveToken(ctx context.Context, token string) error {
	if err := s.put(ctx, keyToken, token); err != nil {
		return err
	}
	s.logger.Info("Auth token saved successfully")
	return nil
}

// GetToken читает токен доступа, пустая строка если его нет
func (s *Storage) GetToken(ctx context.Context) (string, error) {
	return s.get(ctx, keyToken)
}

// ClearToken удаляет токен и имя пользователя
func (s *Storage) ClearToken(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM preferences WHERE key IN (?, ?)", keyToken, keyUsername)
	if err != nil {
		s.logger.Error("Failed to clear auth token: " + err.Error())
		return err
	}
	s.logger.Info("Auth token cleared")
	return nil
}

// SaveUsername сохраняет имя пользователя
func (s *Storage) SaveUsername(ctx context.Context, username string) error {
	return s.put(ctx, keyUsername, username)
}

// GetUsername читает имя пользователя
func (s *Storage) GetUsername(ctx context.Context) (string, error) {
	return s.get(ctx, keyUsername)
}

// IsLoggedIn reports whether a token is stored
func (s *Storage) IsLoggedIn(ctx context.Context) (bool, error) {
	token, err := s.GetToken(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// SaveLanguage сохраняет выбранный язык
func (s *Storage) SaveLanguage(ctx context.Context, code string) error {
	return s.put(ctx, keyLanguage, code)
}

// GetLanguage читает выбранный язык
func (s *Storage) GetLanguage(ctx context.Context) (string, error) {
	return s.get(ctx, keyLanguage)
}
