package postgres

import (
	"MailTrack-Backend/internal/domain"
	"MailTrack-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New создает новый экземпляр PostgreSQL storage
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- User Methods ---

// FindOrCreateUser находит пользователя по email или создает нового.
// Используется после успешного remote sign-in.
func (s *PostgresStorage) FindOrCreateUser(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User

	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Error("failed to find user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user = domain.User{
		Email:    email,
		IsActive: true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		s.log.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("created new user", zap.Int64("user_id", user.ID), zap.String("email", email))
	return &user, nil
}

// GetUserByEmail получает пользователя по email
func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User

	err := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetUserByID получает пользователя по ID
func (s *PostgresStorage) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	var user domain.User

	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", userID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by id", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// CreateUser создает пользователя с bcrypt-хешем (local identity mode)
func (s *PostgresStorage) CreateUser(ctx context.Context, email string, passwordHash string) (*domain.User, error) {
	user := domain.User{
		Email:        email,
		PasswordHash: &passwordHash,
		IsActive:     true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		s.log.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// UpdateUser сохраняет изменения пользователя
func (s *PostgresStorage) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		s.log.Error("failed to update user", zap.Int64("user_id", user.ID), zap.Error(err))
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// RevokeUserSessions сдвигает watermark отзыва сессий пользователя.
// Инвалидирует ВСЕ выданные cookie, а не только текущий.
func (s *PostgresStorage) RevokeUserSessions(ctx context.Context, userID int64, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("tokens_valid_after", at)
	if result.Error != nil {
		s.log.Error("failed to revoke user sessions", zap.Int64("user_id", userID), zap.Error(result.Error))
		return fmt.Errorf("failed to revoke sessions: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	s.log.Info("revoked all sessions", zap.Int64("user_id", userID))
	return nil
}

// --- Link Methods ---

// RegisterLink сохраняет ссылку и запись hit index одной транзакцией.
// Исходная система писала два независимых пути без отката; здесь окно
// несогласованности закрыто транзакцией.
func (s *PostgresStorage) RegisterLink(ctx context.Context, link *domain.TrackingLink) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.TrackingLink
		err := tx.Where("utm_id = ?", link.UTMID).First(&existing).Error
		if err == nil {
			return repository.ErrUTMIDExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check utm id: %w", err)
		}

		if err := tx.Create(link).Error; err != nil {
			return fmt.Errorf("failed to save link: %w", err)
		}

		indexEntry := domain.HitIndexEntry{UTMID: link.UTMID}
		if err := tx.Create(&indexEntry).Error; err != nil {
			return fmt.Errorf("failed to register hit index entry: %w", err)
		}

		return nil
	})

	if err != nil {
		if !errors.Is(err, repository.ErrUTMIDExists) {
			s.log.Error("failed to register link", zap.String("utm_id", link.UTMID), zap.Error(err))
		}
		return err
	}

	s.log.Info("registered new tracking link", zap.String("utm_id", link.UTMID), zap.Int64("user_id", link.UserID))
	return nil
}

// GetUserLink получает ссылку по utm_id в namespace владельца
func (s *PostgresStorage) GetUserLink(ctx context.Context, userID int64, utmID string) (*domain.TrackingLink, error) {
	var link domain.TrackingLink

	err := s.db.WithContext(ctx).Where("user_id = ? AND utm_id = ?", userID, utmID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to get link", zap.String("utm_id", utmID), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return &link, nil
}

// ListUserLinks возвращает все ссылки пользователя, ключ - utm_id
func (s *PostgresStorage) ListUserLinks(ctx context.Context, userID int64) (map[string]*domain.TrackingLink, error) {
	var links []*domain.TrackingLink

	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&links).Error; err != nil {
		s.log.Error("failed to list user links", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	result := make(map[string]*domain.TrackingLink, len(links))
	for _, link := range links {
		result[link.UTMID] = link
	}
	return result, nil
}

// --- Hit Methods ---

// HitIndexHas проверяет наличие utm_id в глобальном hit index
func (s *PostgresStorage) HitIndexHas(ctx context.Context, utmID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.HitIndexEntry{}).Where("utm_id = ?", utmID).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check hit index", zap.String("utm_id", utmID), zap.Error(err))
		return false, fmt.Errorf("failed to check hit index: %w", err)
	}
	return count > 0, nil
}

// AppendHit добавляет hit event к utm_id
func (s *PostgresStorage) AppendHit(ctx context.Context, utmID string, hit *domain.HitEvent) error {
	indexed, err := s.HitIndexHas(ctx, utmID)
	if err != nil {
		return err
	}
	if !indexed {
		return repository.ErrNotIndexed
	}

	hit.UTMID = utmID
	if err := s.db.WithContext(ctx).Create(hit).Error; err != nil {
		s.log.Error("failed to append hit", zap.String("utm_id", utmID), zap.Error(err))
		return fmt.Errorf("failed to append hit: %w", err)
	}

	return nil
}

// ListHits возвращает все hit events для utm_id в порядке добавления
func (s *PostgresStorage) ListHits(ctx context.Context, utmID string) ([]*domain.HitEvent, error) {
	var hits []*domain.HitEvent

	if err := s.db.WithContext(ctx).Where("utm_id = ?", utmID).Order("id").Find(&hits).Error; err != nil {
		s.log.Error("failed to list hits", zap.String("utm_id", utmID), zap.Error(err))
		return nil, fmt.Errorf("failed to list hits: %w", err)
	}

	return hits, nil
}

// MapHitsByLink возвращает hit events для набора utm_id. Ключи без
// хитов отсутствуют в результате - агрегация трактует это как ноль.
func (s *PostgresStorage) MapHitsByLink(ctx context.Context, utmIDs []string) (map[string][]*domain.HitEvent, error) {
	if len(utmIDs) == 0 {
		return map[string][]*domain.HitEvent{}, nil
	}

	var hits []*domain.HitEvent
	if err := s.db.WithContext(ctx).Where("utm_id IN ?", utmIDs).Order("id").Find(&hits).Error; err != nil {
		s.log.Error("failed to map hits by link", zap.Error(err))
		return nil, fmt.Errorf("failed to map hits: %w", err)
	}

	result := make(map[string][]*domain.HitEvent)
	for _, hit := range hits {
		result[hit.UTMID] = append(result[hit.UTMID], hit)
	}
	return result, nil
}
