package repository

import (
	"MailTrack-Backend/internal/domain"
	"context"
	"errors"
	"time"
)

var (
	ErrLinkNotFound = errors.New("tracking link not found")
	ErrUTMIDExists  = errors.New("utm id already registered")
	ErrNotIndexed   = errors.New("utm id not present in hit index")
	ErrUserNotFound = errors.New("user not found")
)

// Storage абстрагирует record store. Агрегация (internal/tracking)
// никогда не обращается к Storage напрямую - она чистая функция.
type Storage interface {
	// User methods
	FindOrCreateUser(ctx context.Context, email string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID int64) (*domain.User, error)
	CreateUser(ctx context.Context, email string, passwordHash string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	// RevokeUserSessions сдвигает watermark отзыва: все cookie,
	// выданные до at, становятся невалидными
	RevokeUserSessions(ctx context.Context, userID int64, at time.Time) error

	// Link methods. RegisterLink - одна операция: запись ссылки в
	// namespace владельца плюс запись в глобальный hit index
	RegisterLink(ctx context.Context, link *domain.TrackingLink) error
	GetUserLink(ctx context.Context, userID int64, utmID string) (*domain.TrackingLink, error)
	ListUserLinks(ctx context.Context, userID int64) (map[string]*domain.TrackingLink, error)

	// Hit methods
	HitIndexHas(ctx context.Context, utmID string) (bool, error)
	AppendHit(ctx context.Context, utmID string, hit *domain.HitEvent) error
	ListHits(ctx context.Context, utmID string) ([]*domain.HitEvent, error)
	MapHitsByLink(ctx context.Context, utmIDs []string) (map[string][]*domain.HitEvent, error)
}
