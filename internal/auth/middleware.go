package auth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// ContextKey тип для ключей контекста
type ContextKey string

const (
	// UserIDKey ключ для получения ID пользователя из контекста
	UserIDKey ContextKey = "user_id"
	// UserEmailKey ключ для получения email пользователя из контекста
	UserEmailKey ContextKey = "user_email"
)

// Middleware session-cookie middleware для HTTP обработчиков
type Middleware struct {
	sessions *SessionService
	log      *zap.Logger
	// RevokedHandler рендерит 401 для отозванного cookie; server
	// подменяет его на страничный рендер
	RevokedHandler http.HandlerFunc
}

// NewMiddleware создает новый session middleware
func NewMiddleware(sessions *SessionService, log *zap.Logger) *Middleware {
	return &Middleware{
		sessions: sessions,
		log:      log,
		RevokedHandler: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Session cookie has been revoked. Try clearing your browser cookies and logging in again.", http.StatusUnauthorized)
		},
	}
}

// RequireSession проверяет session cookie. Без валидной сессии -
// 303 на /login; отозванный cookie - жесткий 401.
func (m *Middleware) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			m.log.Debug("missing session cookie", zap.String("path", r.URL.Path))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		claims, err := m.sessions.VerifySessionCookie(r.Context(), cookie.Value, true)
		if err != nil {
			if errors.Is(err, ErrRevokedSession) {
				m.log.Warn("request denied due to revoked session cookie", zap.String("path", r.URL.Path))
				m.RevokedHandler(w, r)
				return
			}
			m.log.Debug("invalid session cookie", zap.String("path", r.URL.Path), zap.Error(err))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		// Добавляем информацию о пользователе в контекст
		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// OptionalSession прикрепляет сессию к контексту, если cookie валиден
// и не отозван; иначе запрос идет дальше анонимно. Используется
// пиксельным endpoint-ом: невалидная сессия означает "не владелец".
func (m *Middleware) OptionalSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.sessions.VerifySessionCookie(r.Context(), cookie.Value, true)
		if err != nil {
			m.log.Debug("optional session: cookie not accepted", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserIDFromContext извлекает ID пользователя из контекста
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetUserEmailFromContext извлекает email пользователя из контекста
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}
