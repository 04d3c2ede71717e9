package passwordhash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword пустой пароль не хешируется
var ErrEmptyPassword = errors.New("password is empty")

// Hasher хеширует и проверяет пароли с заданной стоимостью bcrypt
type Hasher struct {
	cost int
}

// NewHasher creates a hasher. A cost outside bcrypt limits falls back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// HashPassword хеширует пароль для безопасного хранения в базе данных
func (h *Hasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPasswordHash проверяет, соответствует ли хеш пароля предоставленному паролю
func (h *Hasher) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
