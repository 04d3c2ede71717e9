package jwtauth

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

var (
	// ErrTokenExpired the token exp claim is in the past
	ErrTokenExpired = errors.New("token is expired")
	// ErrInvalidIssuer the iss claim does not match
	ErrInvalidIssuer = errors.New("invalid token issuer")
	// ErrInvalidToken signature, format or claims are wrong
	ErrInvalidToken = errors.New("invalid token")
)

// TokenTypeAccess value of the type claim for access tokens
const TokenTypeAccess = "access"

// JWTService struct
type JWTService struct {
	secretKey string
	issuer    string
	now       func() time.Time
}

// NewJWTService creates a new JWTService instance
func NewJWTService(secretKey, issuer string) *JWTService {
	return &JWTService{
		secretKey: secretKey,
		issuer:    issuer,
		now:       time.Now,
	}
}

// CreateToken creates a new JWT token with additional claims
func (s *JWTService) CreateToken(tokenType string, duration time.Duration, additionalClaims jwt.MapClaims) (string, error) {
	claims := jwt.MapClaims{
		"type": tokenType,
		"exp":  s.now().UTC().Add(duration).Unix(),
		"iat":  s.now().UTC().Unix(),
		"iss":  s.issuer,
	}

	for key, value := range additionalClaims {
		claims[key] = value
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// CreateAccessToken creates an access token with user ID
func (s *JWTService) CreateAccessToken(userID int64, duration time.Duration) (string, error) {
	return s.CreateToken(TokenTypeAccess, duration, jwt.MapClaims{
		"user_id": userID,
	})
}

// UserIDFromToken validates an access token and returns its user ID
func (s *JWTService) UserIDFromToken(tokenString string) (int64, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return 0, err
	}

	if claims["type"] != TokenTypeAccess {
		return 0, ErrInvalidToken
	}

	// числа в MapClaims приходят как float64
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, ErrInvalidToken
	}

	return int64(userID), nil
}

// ParseToken parses and validates a JWT token
func (s *JWTService) ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims["iss"] != s.issuer {
		return nil, ErrInvalidIssuer
	}

	return claims, nil
}
