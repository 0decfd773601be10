package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when login credentials do not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service authenticates the operator credentials configured for the server.
// The build server has a single admin account sourced from configuration;
// there is no user database.
type Service struct {
	username     string
	passwordHash string
	jwtManager   *JWTManager
}

// NewService creates an auth service for the configured admin credentials.
// passwordHash is a bcrypt hash.
func NewService(username, passwordHash string, jwtManager *JWTManager) *Service {
	return &Service{
		username:     username,
		passwordHash: passwordHash,
		jwtManager:   jwtManager,
	}
}

// Authenticate verifies the credentials and returns a signed JWT on success.
func (s *Service) Authenticate(username, password string) (string, error) {
	if username != s.username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.jwtManager.Generate(username)
}
