package auth

import (
	"MailTrack-Backend/internal/repository"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookieName имя session cookie, выдаваемого после входа
	SessionCookieName = "secure-session"
	// SessionTTL срок жизни session cookie
	SessionTTL = 14 * 24 * time.Hour
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrExpiredSession = errors.New("session expired")
	// ErrRevokedSession - cookie выдан до watermark отзыва (logout
	// инвалидирует все сессии пользователя)
	ErrRevokedSession = errors.New("session revoked")
)

// SessionConfig конфигурация session cookie сервиса
type SessionConfig struct {
	SecretKey []byte
	TTL       time.Duration
	Issuer    string
}

// SessionClaims claims session cookie
type SessionClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SessionService выпускает и проверяет session cookie (HS256 JWT).
// Проверка отзыва делается через Storage по watermark пользователя.
type SessionService struct {
	config  *SessionConfig
	storage repository.Storage
}

// NewSessionService создает новый session сервис
func NewSessionService(config *SessionConfig, storage repository.Storage) *SessionService {
	return &SessionService{
		config:  config,
		storage: storage,
	}
}

// CreateSessionCookie выпускает session cookie на TTL
func (s *SessionService) CreateSessionCookie(userID int64, email string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.config.SecretKey)
}

// VerifySessionCookie проверяет и парсит session cookie. При
// checkRevoked сверяет время выдачи с watermark отзыва пользователя.
func (s *SessionService) VerifySessionCookie(ctx context.Context, cookieValue string, checkRevoked bool) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(cookieValue, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return s.config.SecretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredSession
		}
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}

	if checkRevoked {
		user, err := s.storage.GetUserByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, ErrInvalidSession
			}
			return nil, err
		}
		if claims.IssuedAt == nil || user.SessionsRevokedAt(claims.IssuedAt.Time) {
			return nil, ErrRevokedSession
		}
	}

	return claims, nil
}

// SetSessionCookie ставит session cookie: HttpOnly, Secure, Strict
// same-site, max age = TTL
func (s *SessionService) SetSessionCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.config.TTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie стирает session cookie
func (s *SessionService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
