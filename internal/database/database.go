package database

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"energienachweise/marketplace-backend/internal/auth"
	"energienachweise/marketplace-backend/internal/config"
	"energienachweise/marketplace-backend/internal/projects"
	"energienachweise/marketplace-backend/internal/users"
)

// Open connects to postgres with error translation enabled so unique-index
// violations surface as gorm.ErrDuplicatedKey.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseURL()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema for all entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&projects.Project{},
		&projects.ProjectEvidence{},
		&projects.ExpertRequest{},
		&projects.ExpertQuote{},
	)
}

// SeedAdmin creates the bootstrap admin account if it does not exist yet.
// Safe to run on every start.
func SeedAdmin(db *gorm.DB, cfg config.AdminConfig, logger *zap.Logger) error {
	var existing users.User
	err := db.Where("email = ?", cfg.Email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.InitialPassword)
	if err != nil {
		return err
	}
	admin := users.User{
		Email:        cfg.Email,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		IsVerified:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	logger.Info("Bootstrap admin created", zap.String("email", cfg.Email))
	return nil
}
