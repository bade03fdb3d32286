package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foliodb/pkg/kv"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, salt, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEmpty(t, salt)

	assert.True(t, VerifyPassword("correct horse", hash, salt))
	assert.False(t, VerifyPassword("wrong horse", hash, salt))
	assert.False(t, VerifyPassword("correct horse", hash, "not-hex"))
	assert.False(t, VerifyPassword("correct horse", "not-hex", salt))

	// Salts are fresh per call, so the same password hashes differently.
	hash2, salt2, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
	assert.NotEqual(t, salt, salt2)
}

func TestCreateUser(t *testing.T) {
	s := NewService(kv.NewMemory())
	u, err := s.CreateUser("Admin@Example.COM", "secret", "")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", u.Email)
	assert.Equal(t, "admin", u.Role)
	assert.NotEqual(t, "secret", u.PasswordHash)

	// Duplicate emails are rejected regardless of case.
	_, err = s.CreateUser("admin@example.com", "other", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = s.CreateUser("", "secret", "")
	require.Error(t, err)
	_, err = s.CreateUser("new@example.com", "", "")
	require.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	s := NewService(kv.NewMemory())
	_, err := s.CreateUser("admin@example.com", "secret", "")
	require.NoError(t, err)

	u, err := s.Authenticate("admin@example.com", "secret")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotZero(t, u.LastLogin)

	// Wrong password and unknown email are indistinguishable.
	u, err = s.Authenticate("admin@example.com", "nope")
	require.NoError(t, err)
	assert.Nil(t, u)
	u, err = s.Authenticate("ghost@example.com", "secret")
	require.NoError(t, err)
	assert.Nil(t, u)

	// Unconfigured store is an error, not a silent rejection.
	_, err = NewService(nil).Authenticate("admin@example.com", "secret")
	assert.ErrorIs(t, err, kv.ErrNotConfigured)
}

func TestEnsureUser(t *testing.T) {
	s := NewService(kv.NewMemory())
	require.NoError(t, s.EnsureUser("admin@example.com", "first", ""))
	// A second ensure does not overwrite the password.
	require.NoError(t, s.EnsureUser("admin@example.com", "second", ""))

	u, err := s.Authenticate("admin@example.com", "first")
	require.NoError(t, err)
	assert.NotNil(t, u)
}

func TestSessionLifecycle(t *testing.T) {
	m := kv.NewMemory()
	s := NewService(m)
	_, err := s.CreateUser("admin@example.com", "secret", "")
	require.NoError(t, err)

	token, err := s.CreateSession("admin@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	u, err := s.ValidateSession(token)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "admin@example.com", u.Email)

	// Unknown and empty tokens resolve to nil without error.
	u, err = s.ValidateSession("bogus")
	require.NoError(t, err)
	assert.Nil(t, u)
	u, err = s.ValidateSession("")
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, s.DestroySession(token))
	u, err = s.ValidateSession(token)
	require.NoError(t, err)
	assert.Nil(t, u)

	// Destroying again is a no-op.
	require.NoError(t, s.DestroySession(token))
}

func TestSessionExpiry(t *testing.T) {
	m := kv.NewMemory()
	s := NewService(m)
	_, err := s.CreateUser("admin@example.com", "secret", "")
	require.NoError(t, err)

	token, err := s.CreateSession("admin@example.com")
	require.NoError(t, err)

	// Force the deadline into the past; the fixed TTL does not slide.
	require.NoError(t, m.Expire("session:"+token, -time.Second))
	u, err := s.ValidateSession(token)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSessionForRemovedUser(t *testing.T) {
	m := kv.NewMemory()
	s := NewService(m)
	_, err := s.CreateUser("admin@example.com", "secret", "")
	require.NoError(t, err)
	token, err := s.CreateSession("admin@example.com")
	require.NoError(t, err)

	// Remove the user behind the live session.
	require.NoError(t, m.HDel("users", "admin@example.com"))
	u, err := s.ValidateSession(token)
	require.NoError(t, err)
	assert.Nil(t, u)
}
