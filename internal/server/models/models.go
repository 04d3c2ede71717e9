package models

import "time"

// User модель пользователя
type User struct {
	UserID       int64
	Username     string
	PasswordHash string
}

// ContextKey is a custom type for context keys
type ContextKey struct {
	name string
}

// UserIDKey is a key for user id in context
var UserIDKey = ContextKey{"user_id"}

// Note модель заметки в базе
type Note struct {
	ID         int64
	UserID     int64
	Title      string
	Content    string
	Color      string
	IsFavorite bool
	Timestamp  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NoteIn тело запроса на создание и изменение заметки
type NoteIn struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Color      *string `json:"color,omitempty"`
	IsFavorite bool    `json:"is_favorite"`
	Timestamp  *int64  `json:"timestamp,omitempty"`
}

// NoteOut представление заметки в ответе API
type NoteOut struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Color      string `json:"color"`
	IsFavorite bool   `json:"is_favorite"`
	Timestamp  int64  `json:"timestamp"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// ToOut converts a stored note into its response form
func (n Note) ToOut() NoteOut {
	return NoteOut{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		Color:      n.Color,
		IsFavorite: n.IsFavorite,
		Timestamp:  n.Timestamp,
		CreatedAt:  n.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  n.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Credentials логин и пароль из запроса
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse ответ /register и /token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
