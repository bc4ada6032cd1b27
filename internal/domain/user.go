package domain

import "time"

// User представляет пользователя сервиса. Для remote identity провайдера
// запись создается при первом успешном входе (find-or-create по email),
// для local провайдера хранит bcrypt-хеш пароля.
type User struct {
	ID           int64   `gorm:"primaryKey;column:id" json:"id"`
	Email        string  `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash *string `gorm:"column:password_hash" json:"-"`
	// TokensValidAfter - watermark отзыва сессий: cookie, выданные
	// раньше этого момента, считаются отозванными
	TokensValidAfter time.Time  `gorm:"column:tokens_valid_after" json:"-"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	IsActive         bool       `gorm:"column:is_active;default:true" json:"is_active"`

	// Relationships
	TrackingLinks []TrackingLink `gorm:"foreignKey:UserID" json:"tracking_links,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (User) TableName() string {
	return "users"
}

// SessionsRevokedAt проверяет, был ли cookie с данным временем выдачи
// отозван logout-ом. iat в cookie имеет секундную точность, поэтому
// watermark сравнивается на той же границе: повторный вход в ту же
// секунду после logout выдает валидный cookie
func (u *User) SessionsRevokedAt(issuedAt time.Time) bool {
	return issuedAt.Before(u.TokensValidAfter.Truncate(time.Second))
}
