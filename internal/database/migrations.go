package database

import (
	"MailTrack-Backend/internal/auth"
	"MailTrack-Backend/internal/config"
	"MailTrack-Backend/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate выполняет автоматические миграции для всех доменных моделей
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	// Порядок миграций важен из-за внешних ключей
	models := []interface{}{
		&domain.User{},          // Сначала пользователи
		&domain.TrackingLink{},  // Ссылки (зависят от пользователей)
		&domain.HitIndexEntry{}, // Глобальный hit index
		&domain.HitEvent{},      // Hit events (ссылаются на utm_id)
	}

	for i, model := range models {
		modelName := fmt.Sprintf("%T", model)
		log.Info("migrating model",
			zap.String("model", modelName),
			zap.Int("step", i+1),
			zap.Int("total", len(models)))

		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}
	}

	log.Info("database auto-migration completed successfully", zap.Int("migrated_models", len(models)))
	return nil
}

// SeedData создает учетную запись для local identity провайдера, если
// заданы seed-учетные данные и пользователя еще нет
func SeedData(db *gorm.DB, cfg *config.Identity, log *zap.Logger) error {
	if cfg.SeedEmail == "" || cfg.SeedPassword == "" {
		log.Info("no seed credentials configured, skipping seeding")
		return nil
	}

	var count int64
	db.Model(&domain.User{}).Where("email = ?", cfg.SeedEmail).Count(&count)
	if count > 0 {
		log.Info("seed user already exists, skipping seeding", zap.String("email", cfg.SeedEmail))
		return nil
	}

	passwordService := auth.NewPasswordService()
	hash, err := passwordService.HashPassword(cfg.SeedPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	user := domain.User{
		Email:        cfg.SeedEmail,
		PasswordHash: &hash,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Error("failed to seed user", zap.Error(err))
		return fmt.Errorf("failed to seed user: %w", err)
	}

	log.Info("seeded local user", zap.String("email", cfg.SeedEmail))
	return nil
}
