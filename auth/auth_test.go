package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosminvladulescu/bcon-site/errs"
	"github.com/cosminvladulescu/bcon-site/models"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret!"))
}

func newManager(t *testing.T, now time.Time) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	m.now = func() time.Time { return now }
	return m
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := newManager(t, now)
	admin := &models.AdminUser{ID: uuid.New(), Email: "admin@bcon.ro"}

	token, expiresAt, err := m.Issue(admin)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@bcon.ro", claims.Email)

	id, err := claims.AdminID()
	require.NoError(t, err)
	assert.Equal(t, admin.ID, id)
}

func TestVerifyRejects(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := newManager(t, now)
	admin := &models.AdminUser{ID: uuid.New(), Email: "admin@bcon.ro"}
	token, _, err := m.Issue(admin)
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := m.Verify("")
		assert.ErrorIs(t, err, errs.ErrMissingToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := newManager(t, now.Add(2*time.Hour))
		_, err := later.Verify(token)
		assert.ErrorIs(t, err, errs.ErrExpiredToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewTokenManager("another-secret", time.Hour)
		require.NoError(t, err)
		other.now = m.now
		_, err = other.Verify(token)
		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify("not.a.token")
		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Verify(none)
		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})

	t.Run("subject is not an id", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin@bcon.ro",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = m.Verify(bad)
		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})
}

func TestNewTokenManager(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.ErrorIs(t, err, errs.ErrConfigInvalid)

	m, err := NewTokenManager("s", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, m.ttl)
}
