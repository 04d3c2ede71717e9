package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/vova4o/gonotes/internal/server/models"
	"github.com/vova4o/gonotes/internal/server/storage"
	"github.com/vova4o/gonotes/package/jwtauth"
	"github.com/vova4o/gonotes/package/logger"
	"github.com/vova4o/gonotes/package/passwordhash"
)

var (
	// ErrInvalidCredentials неверное имя пользователя или пароль
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidInput пустые обязательные поля
	ErrInvalidInput = errors.New("username and password are required")
	// ErrNoUser в контексте нет пользователя
	ErrNoUser = errors.New("failed to get user ID from context")
)

// DefaultColor цвет новой заметки без явно заданного цвета
const DefaultColor = "DEFAULT"

// Service struct
type Service struct {
	stor       Storager
	jwtService *jwtauth.JWTService
	hasher     *passwordhash.Hasher
	tokenTTL   time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

// Storager that is interface to work with storage layer
type Storager interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	FindUserByName(ctx context.Context, username string) (*models.User, error)
	ListNotes(ctx context.Context, userID int64) ([]models.Note, error)
	CreateNote(ctx context.Context, note models.Note) (models.Note, error)
	UpdateNote(ctx context.Context, note models.Note) (models.Note, error)
	DeleteNote(ctx context.Context, userID, noteID int64) error
}

// NewService создает новый экземпляр сервиса
func NewService(stor Storager, jwtService *jwtauth.JWTService, hasher *passwordhash.Hasher, tokenTTL time.Duration, logger *logger.Logger) *Service {
	return &Service{
		stor:       stor,
		jwtService: jwtService,
		hasher:     hasher,
		tokenTTL:   tokenTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// RegisterUser регистрирует нового пользователя и сразу выдаёт токен
func (s *Service) RegisterUser(ctx context.Context, creds models.Credentials) (*models.TokenResponse, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := s.hasher.HashPassword(creds.Password)
	if err != nil {
		s.logger.Error("Failed to hash password: " + err.Error())
		return nil, err
	}

	userID, err := s.stor.CreateUser(ctx, models.User{Username: username, PasswordHash: hash})
	if err != nil {
		if !errors.Is(err, storage.ErrUserExists) {
			s.logger.Error("Failed to create user: " + err.Error())
		}
		return nil, err
	}

	return s.issueToken(userID)
}

// AuthenticateUser аутентифицирует пользователя
func (s *Service) AuthenticateUser(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	s.logger.Info("Authenticating user: " + username)

	user, err := s.stor.FindUserByName(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Failed to find user: " + err.Error())
		return nil, err
	}

	if !s.hasher.CheckPasswordHash(password, user.PasswordHash) {
		s.logger.Warning("Wrong password for user: " + username)
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user.UserID)
}

func (s *Service) issueToken(userID int64) (*models.TokenResponse, error) {
	accessToken, err := s.jwtService.CreateAccessToken(userID, s.tokenTTL)
	if err != nil {
		s.logger.Error("Failed to create access token: " + err.Error())
		return nil, err
	}

	return &models.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
	}, nil
}

// UserIDFromToken проверяет токен доступа
func (s *Service) UserIDFromToken(token string) (int64, error) {
	return s.jwtService.UserIDFromToken(token)
}

func userIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(models.UserIDKey).(int64)
	if !ok || userID <= 0 {
		return 0, ErrNoUser
	}
	return userID, nil
}

// ListNotes возвращает заметки текущего пользователя
func (s *Service) ListNotes(ctx context.Context) ([]models.Note, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.stor.ListNotes(ctx, userID)
}

// CreateNote создает заметку текущего пользователя
func (s *Service) CreateNote(ctx context.Context, in models.NoteIn) (models.Note, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return models.Note{}, err
	}

	note := s.fromInput(in)
	note.UserID = userID
	return s.stor.CreateNote(ctx, note)
}

// UpdateNote заменяет поля заметки текущего пользователя
func (s *Service) UpdateNote(ctx context.Context, noteID int64, in models.NoteIn) (models.Note, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return models.Note{}, err
	}

	note := s.fromInput(in)
	note.ID = noteID
	note.UserID = userID

	saved, err := s.stor.UpdateNote(ctx, note)
	if err != nil {
		return models.Note{}, err
	}

	s.logger.Info("Note updated: " + strconv.FormatInt(noteID, 10))
	return saved, nil
}

// DeleteNote удаляет заметку текущего пользователя
func (s *Service) DeleteNote(ctx context.Context, noteID int64) error {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return err
	}
	return s.stor.DeleteNote(ctx, userID, noteID)
}

// fromInput fills the color and timestamp a client may omit
func (s *Service) fromInput(in models.NoteIn) models.Note {
	note := models.Note{
		Title:      in.Title,
		Content:    in.Content,
		Color:      DefaultColor,
		IsFavorite: in.IsFavorite,
		Timestamp:  s.now().UnixMilli(),
	}

	if in.Color != nil && strings.TrimSpace(*in.Color) != "" {
		note.Color = strings.ToUpper(strings.TrimSpace(*in.Color))
	}
	if in.Timestamp != nil {
		note.Timestamp = *in.Timestamp
	}

	return note
}
