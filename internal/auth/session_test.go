package auth

import (
	"MailTrack-Backend/internal/repository/memory"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSessionService(ttl time.Duration) (*SessionService, *memory.MemStorage) {
	storage := memory.New()
	service := NewSessionService(&SessionConfig{
		SecretKey: []byte("test-secret-key-for-sessions"),
		TTL:       ttl,
		Issuer:    "MailTrack-Backend",
	}, storage)
	return service, storage
}

func TestSessionService_CreateAndVerify(t *testing.T) {
	service, storage := setupSessionService(SessionTTL)
	ctx := context.Background()

	user, err := storage.FindOrCreateUser(ctx, "owner@example.com")
	require.NoError(t, err)

	cookieValue, err := service.CreateSessionCookie(user.ID, user.Email)
	require.NoError(t, err)
	require.NotEmpty(t, cookieValue)

	claims, err := service.VerifySessionCookie(ctx, cookieValue, true)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, "MailTrack-Backend", claims.Issuer)
}

func TestSessionService_VerifyInvalidCookie(t *testing.T) {
	service, _ := setupSessionService(SessionTTL)
	ctx := context.Background()

	t.Run("garbage value", func(t *testing.T) {
		_, err := service.VerifySessionCookie(ctx, "not-a-jwt", false)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewSessionService(&SessionConfig{
			SecretKey: []byte("a-different-secret"),
			TTL:       SessionTTL,
			Issuer:    "MailTrack-Backend",
		}, memory.New())

		cookieValue, err := other.CreateSessionCookie(1, "owner@example.com")
		require.NoError(t, err)

		_, err = service.VerifySessionCookie(ctx, cookieValue, false)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}

func TestSessionService_VerifyExpiredCookie(t *testing.T) {
	service, storage := setupSessionService(-time.Hour)
	ctx := context.Background()

	user, err := storage.FindOrCreateUser(ctx, "owner@example.com")
	require.NoError(t, err)

	cookieValue, err := service.CreateSessionCookie(user.ID, user.Email)
	require.NoError(t, err)

	_, err = service.VerifySessionCookie(ctx, cookieValue, false)
	assert.ErrorIs(t, err, ErrExpiredSession)
}

func TestSessionService_RevokedWatermark(t *testing.T) {
	service, storage := setupSessionService(SessionTTL)
	ctx := context.Background()

	user, err := storage.FindOrCreateUser(ctx, "owner@example.com")
	require.NoError(t, err)

	cookieValue, err := service.CreateSessionCookie(user.ID, user.Email)
	require.NoError(t, err)

	// Valid before the revocation
	_, err = service.VerifySessionCookie(ctx, cookieValue, true)
	require.NoError(t, err)

	// Revocation invalidates every cookie issued before the watermark
	require.NoError(t, storage.RevokeUserSessions(ctx, user.ID, time.Now().Add(time.Minute)))

	_, err = service.VerifySessionCookie(ctx, cookieValue, true)
	assert.ErrorIs(t, err, ErrRevokedSession)

	// The cryptographic check alone still passes
	claims, err := service.VerifySessionCookie(ctx, cookieValue, false)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestSessionService_ReloginAfterRevocation(t *testing.T) {
	service, storage := setupSessionService(SessionTTL)
	ctx := context.Background()

	user, err := storage.FindOrCreateUser(ctx, "owner@example.com")
	require.NoError(t, err)

	// Logout sets the watermark to now; a cookie issued right after,
	// possibly within the same wall-clock second, must be valid even
	// though its iat carries only whole seconds.
	require.NoError(t, storage.RevokeUserSessions(ctx, user.ID, time.Now()))

	fresh, err := service.CreateSessionCookie(user.ID, user.Email)
	require.NoError(t, err)

	claims, err := service.VerifySessionCookie(ctx, fresh, true)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestSessionService_VerifyUnknownUser(t *testing.T) {
	service, _ := setupSessionService(SessionTTL)
	ctx := context.Background()

	cookieValue, err := service.CreateSessionCookie(42, "ghost@example.com")
	require.NoError(t, err)

	_, err = service.VerifySessionCookie(ctx, cookieValue, true)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionService_CookieAttributes(t *testing.T) {
	service, _ := setupSessionService(SessionTTL)

	t.Run("set", func(t *testing.T) {
		rec := httptest.NewRecorder()
		service.SetSessionCookie(rec, "cookie-value")

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)

		cookie := cookies[0]
		assert.Equal(t, SessionCookieName, cookie.Name)
		assert.Equal(t, "cookie-value", cookie.Value)
		assert.Equal(t, "/", cookie.Path)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
		assert.Equal(t, int(SessionTTL.Seconds()), cookie.MaxAge)
	})

	t.Run("clear", func(t *testing.T) {
		rec := httptest.NewRecorder()
		service.ClearSessionCookie(rec)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, SessionCookieName, cookies[0].Name)
		assert.Empty(t, cookies[0].Value)
		assert.Negative(t, cookies[0].MaxAge)
	})
}
