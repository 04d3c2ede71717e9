package storage

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/lib/pq"
	"github.com/vova4o/gonotes/internal/server/models"
	"github.com/vova4o/gonotes/package/logger"
)

var (
	// ErrNotFound запись не найдена или принадлежит другому пользователю
	ErrNotFound = errors.New("not found")
	// ErrUserExists имя пользователя занято
	ErrUserExists = errors.New("user already exists")
)

// код ошибки PostgreSQL unique_violation
const uniqueViolation = "23505"

// Storage struct
type Storage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewStorage function creates new storage instance
func NewStorage(ctx context.Context, connString string, logger *logger.Logger) (*Storage, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	// Проверка соединения
	if err := db.PingContext(ctx); err != nil {
		logger.Error("Failed to connect to the database")
		db.Close()
		return nil, err
	}

	storage := &Storage{
		db:     db,
		logger: logger,
	}

	// Создание необходимых таблиц
	if err := storage.createTables(ctx); err != nil {
		logger.Error("Failed to create tables: " + err.Error())
		db.Close()
		return nil, err
	}

	logger.Info("Connected to the database and tables created successfully")
	return storage, nil
}

func (s *Storage) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            username VARCHAR(255) UNIQUE NOT NULL,
            password_hash VARCHAR(255) NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS notes (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            title TEXT NOT NULL,
            content TEXT NOT NULL,
            color VARCHAR(32) NOT NULL,
            is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
            timestamp BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes(user_id)`,
	}

	for _, query := range queries {
		_, err := s.db.ExecContext(ctx, query)
		if err != nil {
			return err
		}
	}

	return nil
}

// CreateUser создает нового пользователя
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	query := `INSERT INTO users (username, password_hash, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
	var userID int64
	now := time.Now().UTC()
	err := s.db.QueryRowContext(ctx, query, user.Username, user.PasswordHash, now, now).Scan(&userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			s.logger.Warning("Username already taken: " + user.Username)
			return 0, ErrUserExists
		}
		s.logger.Error("Failed to create user: " + err.Error())
		return 0, err
	}

	s.logger.Info("User created successfully")
	return userID, nil
}

// FindUserByName ищет пользователя
func (s *Storage) FindUserByName(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash FROM users WHERE username = $1`
	user := &models.User{}
	err := s.db.QueryRowContext(ctx, query, username).Scan(&user.UserID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Error("Failed to find user: " + err.Error())
		return nil, err
	}

	return user, nil
}

const noteColumns = `id, user_id, title, content, color, is_favorite, timestamp, created_at, updated_at`

func scanNote(row interface{ Scan(dest ...any) error }) (models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Color, &n.IsFavorite, &n.Timestamp, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// ListNotes возвращает заметки пользователя, новые первыми
func (s *Storage) ListNotes(ctx context.Context, userID int64) ([]models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = $1 ORDER BY timestamp DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		s.logger.Error("Failed to list notes: " + err.Error())
		return nil, err
	}
	defer rows.Close()

	notes := make([]models.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			s.logger.Error("Failed to scan row: " + err.Error())
			return nil, err
		}
		notes = append(notes, n)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error("Rows error: " + err.Error())
		return nil, err
	}

	return notes, nil
}

// CreateNote сохраняет заметку и возвращает её с id и метками времени
func (s *Storage) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	query := `INSERT INTO notes (user_id, title, content, color, is_favorite, timestamp, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING ` + noteColumns
	now := time.Now().UTC()

	saved, err := scanNote(s.db.QueryRowContext(ctx, query,
		note.UserID, note.Title, note.Content, note.Color, note.IsFavorite, note.Timestamp, now, now))
	if err != nil {
		s.logger.Error("Failed to create note: " + err.Error())
		return models.Note{}, err
	}

	s.logger.Info("Note created: " + strconv.FormatInt(saved.ID, 10))
	return saved, nil
}

// UpdateNote изменяет заметку пользователя
func (s *Storage) UpdateNote(ctx context.Context, note models.Note) (models.Note, error) {
	query := `UPDATE notes SET title = $1, content = $2, color = $3, is_favorite = $4, timestamp = $5, updated_at = $6
        WHERE id = $7 AND user_id = $8 RETURNING ` + noteColumns

	saved, err := scanNote(s.db.QueryRowContext(ctx, query,
		note.Title, note.Content, note.Color, note.IsFavorite, note.Timestamp, time.Now().UTC(), note.ID, note.UserID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Note{}, ErrNotFound
		}
		s.logger.Error("Failed to update note: " + err.Error())
		return models.Note{}, err
	}

	return saved, nil
}

// DeleteNote удаляет заметку пользователя
func (s *Storage) DeleteNote(ctx context.Context, userID, noteID int64) error {
	query := `DELETE FROM notes WHERE id = $1 AND user_id = $2`
	res, err := s.db.ExecContext(ctx, query, noteID, userID)
	if err != nil {
		s.logger.Error("Failed to delete note: " + err.Error())
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Info("Note deleted: " + strconv.FormatInt(noteID, 10))
	return nil
}

// Close закрывает соединение с базой данных
func (s *Storage) Close() error {
	return s.db.Close()
}
