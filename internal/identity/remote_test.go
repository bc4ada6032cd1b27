package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRemoteProvider_SignIn(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	t.Run("success", func(t *testing.T) {
		endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "test-api-key", r.URL.Query().Get("key"))

			require.NoError(t, r.ParseForm())
			assert.Equal(t, "owner@example.com", r.PostForm.Get("email"))
			assert.Equal(t, "correct-password", r.PostForm.Get("password"))
			assert.Equal(t, "true", r.PostForm.Get("returnSecureToken"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"idToken":"token-123","localId":"uid-1","email":"owner@example.com"}`))
		}))
		defer endpoint.Close()

		provider := NewRemoteProvider(endpoint.URL, "test-api-key", log)
		account, err := provider.SignIn(ctx, "owner@example.com", "correct-password")
		require.NoError(t, err)
		assert.Equal(t, "owner@example.com", account.Email)
	})

	t.Run("success without email in payload falls back to submitted one", func(t *testing.T) {
		endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"idToken":"token-123","localId":"uid-1"}`))
		}))
		defer endpoint.Close()

		provider := NewRemoteProvider(endpoint.URL, "test-api-key", log)
		account, err := provider.SignIn(ctx, "owner@example.com", "correct-password")
		require.NoError(t, err)
		assert.Equal(t, "owner@example.com", account.Email)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"INVALID_PASSWORD"}}`, http.StatusBadRequest)
		}))
		defer endpoint.Close()

		provider := NewRemoteProvider(endpoint.URL, "test-api-key", log)
		_, err := provider.SignIn(ctx, "owner@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("endpoint failure", func(t *testing.T) {
		endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer endpoint.Close()

		provider := NewRemoteProvider(endpoint.URL, "test-api-key", log)
		_, err := provider.SignIn(ctx, "owner@example.com", "any-password")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("malformed success payload", func(t *testing.T) {
		endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}))
		defer endpoint.Close()

		provider := NewRemoteProvider(endpoint.URL, "test-api-key", log)
		_, err := provider.SignIn(ctx, "owner@example.com", "any-password")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("missing id token", func(t *testing.T) {
		endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"localId":"uid-1","email":"owner@example.com"}`))
		}))
		defer endpoint.Close()

		provider := NewRemoteProvider(endpoint.URL, "test-api-key", log)
		_, err := provider.SignIn(ctx, "owner@example.com", "any-password")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		endpoint.Close()

		provider := NewRemoteProvider(endpoint.URL, "test-api-key", log)
		_, err := provider.SignIn(ctx, "owner@example.com", "any-password")
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}
