package http

import (
	"MailTrack-Backend/internal/auth"
	"MailTrack-Backend/internal/forms"
	"MailTrack-Backend/internal/identity"
	"MailTrack-Backend/internal/repository"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// AuthHandler обработчики входа и выхода
type AuthHandler struct {
	storage  repository.Storage
	provider identity.Provider
	sessions *auth.SessionService
	render   *Renderer
	log      *zap.Logger
}

// NewAuthHandler создает новые обработчики аутентификации
func NewAuthHandler(storage repository.Storage, provider identity.Provider, sessions *auth.SessionService, render *Renderer, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		storage:  storage,
		provider: provider,
		sessions: sessions,
		render:   render,
		log:      log,
	}
}

// Login обрабатывает вход (GET: форма, POST: проверка учетных данных).
// Валидный неотозванный cookie - редирект (идемпотентно); отозванный -
// жесткий 401 с инструкцией очистить cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		_, verr := h.sessions.VerifySessionCookie(r.Context(), cookie.Value, true)
		switch {
		case verr == nil:
			h.render.Flash(w, "You're already logged in!")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		case errors.Is(verr, auth.ErrRevokedSession):
			h.log.Warn("/login - request denied due to revoked session cookie")
			h.RenderRevoked(w, r)
			return
		}
		// Невалидный или просроченный cookie - показываем форму входа
	}

	if r.Method != http.MethodPost {
		h.render.Render(w, r, http.StatusOK, "login", map[string]interface{}{
			"Errors": map[string]string{},
		})
		return
	}

	form := forms.ParseLoginForm(r)
	if fieldErrs := form.Validate(); len(fieldErrs) > 0 {
		h.render.Render(w, r, http.StatusOK, "login", map[string]interface{}{
			"Form":   form,
			"Errors": fieldErrs,
		})
		return
	}

	account, err := h.provider.SignIn(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			h.log.Warn("/login - user provided invalid credentials")
			h.render.Flash(w, "Invalid username or password!")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		// Отказ identity сервиса никогда не выдается за неверный пароль
		h.log.Error("/login - unable to sign in user", zap.Error(err))
		h.render.Render(w, r, http.StatusServiceUnavailable, "503", nil)
		return
	}

	user, err := h.storage.FindOrCreateUser(r.Context(), account.Email)
	if err != nil {
		h.log.Error("/login - failed to resolve user", zap.Error(err))
		h.render.Render(w, r, http.StatusServiceUnavailable, "503", nil)
		return
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := h.storage.UpdateUser(r.Context(), user); err != nil {
		h.log.Warn("failed to update last login time", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	cookieValue, err := h.sessions.CreateSessionCookie(user.ID, user.Email)
	if err != nil {
		h.log.Error("/login - failed to create session cookie", zap.Error(err))
		h.render.Render(w, r, http.StatusServiceUnavailable, "503", nil)
		return
	}

	h.sessions.SetSessionCookie(w, cookieValue)
	h.log.Info("/login - user logged in successfully", zap.Int64("user_id", user.ID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout отзывает ВСЕ сессии пользователя и стирает cookie.
// Невалидный или отсутствующий cookie - уже разлогинен, редирект без
// ошибки.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	claims, err := h.sessions.VerifySessionCookie(r.Context(), cookie.Value, false)
	if err != nil {
		h.log.Warn("/logout - request denied due to invalid session cookie")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.storage.RevokeUserSessions(r.Context(), claims.UserID, time.Now()); err != nil {
		h.log.Error("/logout - failed to revoke sessions", zap.Int64("user_id", claims.UserID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.sessions.ClearSessionCookie(w)
	h.log.Info("/logout - user logged out successfully", zap.Int64("user_id", claims.UserID))
	h.render.Flash(w, "Successfully logged out! - See you soon...")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// RenderRevoked рендерит 401 страницу для отозванного cookie;
// используется и session middleware-ом
func (h *AuthHandler) RenderRevoked(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusUnauthorized, "401", nil)
}
