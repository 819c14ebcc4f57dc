package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour, "test")
	company := uuid.New()
	subject := Subject{
		UserID:       uuid.New(),
		Username:     "bob",
		Role:         "admin",
		CompanyID:    &company,
		TokenVersion: "v1",
	}

	token, expiresAt, err := m.GenerateToken(subject)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, subject.UserID, claims.UserID)
	assert.Equal(t, "bob", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	require.NotNil(t, claims.CompanyID)
	assert.Equal(t, company, *claims.CompanyID)
	assert.Equal(t, "v1", claims.TokenVersion)
}

func TestValidateExpired(t *testing.T) {
	m := NewManager("secret", time.Minute, "test")
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := m.GenerateToken(Subject{UserID: uuid.New(), Username: "bob"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsForeignTokens(t *testing.T) {
	issuer := NewManager("secret", time.Hour, "test")
	token, _, err := issuer.GenerateToken(Subject{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = NewManager("other-secret", time.Hour, "test").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewManager("secret", time.Hour, "someone-else").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
