package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *Service {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewService("admin", string(hash), NewJWTManager("test-secret", time.Hour))
}

func TestServiceAuthenticate(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Authenticate("admin", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestServiceAuthenticateWrongPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Authenticate("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestServiceAuthenticateUnknownUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Authenticate("operator", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
