package models

import (
	"strings"
	"time"
)

// Note заметка в том виде, в котором её видит интерфейс
type Note struct {
	ID        Identifier
	Title     string
	Content   string
	Color     NoteColor
	Timestamp int64
	IsPinned  bool
}

// NewNote creates a not yet persisted note stamped with the current time
func NewNote(title, content string, color NoteColor) Note {
	return Note{
		ID:        NewLocalID(),
		Title:     title,
		Content:   content,
		Color:     color,
		Timestamp: NowMillis(),
	}
}

// NowMillis returns current time as epoch milliseconds
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// RegisterAndLogin модель для хранения логина и пароля
type RegisterAndLogin struct {
	Username string
	Password string
}

// TokenResponse is the payload returned by /register and /token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   *int   `json:"expires_in,omitempty"`
}

// NoteColor цвет заметки из фиксированной палитры
type NoteColor int

// Palette
const (
	ColorDefault NoteColor = iota
	ColorRed
	ColorOrange
	ColorYellow
	ColorGreen
	ColorTeal
	ColorBlue
	ColorPurple
	ColorPink
	ColorBrown
	ColorGray
)

// FallbackColor is used when a remote colour is absent or unknown
const FallbackColor = ColorBlue

var colorNames = [...]string{
	"DEFAULT", "RED", "ORANGE", "YELLOW", "GREEN", "TEAL",
	"BLUE", "PURPLE", "PINK", "BROWN", "GRAY",
}

// Colors returns the whole palette in display order
func Colors() []NoteColor {
	colors := make([]NoteColor, len(colorNames))
	for i := range colorNames {
		colors[i] = NoteColor(i)
	}
	return colors
}

func (c NoteColor) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return colorNames[ColorDefault]
	}
	return colorNames[c]
}

// ParseNoteColor matches a palette name ignoring case
func ParseNoteColor(s string) (NoteColor, bool) {
	s = strings.TrimSpace(s)
	for i, name := range colorNames {
		if strings.EqualFold(name, s) {
			return NoteColor(i), true
		}
	}
	return ColorDefault, false
}

// Language язык интерфейса
type Language string

// Supported languages
const (
	LanguageEnglish  Language = "en"
	LanguageJapanese Language = "ja"
)

// LanguageFromCode returns the language for a code, English when unknown
func LanguageFromCode(code string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(code))) {
	case LanguageJapanese:
		return LanguageJapanese
	default:
		return LanguageEnglish
	}
}

// DisplayName returns the language name in that language
func (l Language) DisplayName() string {
	if l == LanguageJapanese {
		return "日本語"
	}
	return "English"
}
