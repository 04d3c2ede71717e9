package service

import (
	"context"

	"github.com/vova4o/gonotes/internal/client/models"
	"github.com/vova4o/gonotes/package/logger"
)

// Service struct
type Service struct {
	stor   Storager
	logger *logger.Logger
}

// Storager interface
type Storager interface {
	SaveToken(ctx context.Context, token string) error
	GetToken(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
	SaveUsername(ctx context.Context, username string) error
	GetUsername(ctx context.Context) (string, error)
	IsLoggedIn(ctx context.Context) (bool, error)
	SaveLanguage(ctx context.Context, code string) error
	GetLanguage(ctx context.Context) (string, error)
}

// NewService creates new service instance
func NewService(stor Storager, logger *logger.Logger) *Service {
	return &Service{
		stor:   stor,
		logger: logger,
	}
}

// SaveToken persists the access token
func (s *Service) SaveToken(ctx context.Context, token string) error {
	s.logger.Debug("Saving auth token to storage")

	err := s.stor.SaveToken(ctx, token)
	if err != nil {
		s.logger.Error("Failed to save auth token to storage")
		return err
	}

	return nil
}

// GetToken reads the access token from storage
func (s *Service) GetToken(ctx context.Context) (string, error) {
	s.logger.Debug("Reading auth token from storage")

	token, err := s.stor.GetToken(ctx)
	if err != nil {
		s.logger.Error("Failed to read auth token from storage")
		return "", err
	}

	return token, nil
}

// ClearToken forgets the token and the username
func (s *Service) ClearToken(ctx context.Context) error {
	err := s.stor.ClearToken(ctx)
	if err != nil {
		s.logger.Error("Failed to clear auth token")
		return err
	}

	return nil
}

// SaveUsername persists the username of the current session
func (s *Service) SaveUsername(ctx context.Context, username string) error {
	err := s.stor.SaveUsername(ctx, username)
	if err != nil {
		s.logger.Error("Failed to save username")
		return err
	}

	return nil
}

// GetUsername reads the username of the current session
func (s *Service) GetUsername(ctx context.Context) (string, error) {
	username, err := s.stor.GetUsername(ctx)
	if err != nil {
		s.logger.Error("Failed to read username")
		return "", err
	}

	return username, nil
}

// IsLoggedIn reports whether a token is stored; storage errors count as logged out
func (s *Service) IsLoggedIn(ctx context.Context) bool {
	ok, err := s.stor.IsLoggedIn(ctx)
	if err != nil {
		s.logger.Error("Failed to check login state: " + err.Error())
		return false
	}

	return ok
}

// SaveLanguage persists the interface language
func (s *Service) SaveLanguage(ctx context.Context, lang models.Language) error {
	err := s.stor.SaveLanguage(ctx, string(lang))
	if err != nil {
		s.logger.Error("Failed to save language")
		return err
	}

	return nil
}

// Language returns the saved interface language, English by default
func (s *Service) Language(ctx context.Context) models.Language {
	code, err := s.stor.GetLanguage(ctx)
	if err != nil {
		s.logger.Warning("Failed to read language, using default: " + err.Error())
		return models.LanguageEnglish
	}

	return models.LanguageFromCode(code)
}
