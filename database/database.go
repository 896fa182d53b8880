package database

import (
	"context"
	"errors"
	"fmt"
	"os"

	"takeaway-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const DefaultStoreName = "Takeaway Kitchen"

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=takeaway port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.MenuItem{},
		&models.StoreConfig{},
		&models.OpeningHours{},
		&models.Holiday{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func CreateDefaultAdmin(db *gorm.DB, logger *zap.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@takeaway.local"
	}
	if adminPassword == "" {
		adminPassword = uuid.NewString()
		logger.Warn("ADMIN_PASSWORD not set, generated a random admin password",
			zap.String("email", adminEmail),
			zap.String("password", adminPassword),
		)
	}

	var existingUser models.User
	result := db.Where("email = ?", adminEmail).First(&existingUser)
	if result.Error == nil {
		// Admin already exists
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up admin: %w", result.Error)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
		Name:     "Admin User",
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info("default admin created", zap.String("email", adminEmail))
	return nil
}

// EnsureStoreConfig returns the id of the store configuration, seeding a
// postcode-priced store with a week of evening hours on first run.
func EnsureStoreConfig(ctx context.Context, db *gorm.DB, logger *zap.Logger) (uuid.UUID, error) {
	var existing models.StoreConfig
	err := db.WithContext(ctx).Order("created_at ASC").First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, fmt.Errorf("failed to load store config: %w", err)
	}

	cfg := defaultStoreConfig()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cfg).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.OpeningHours{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		hours := defaultOpeningHours()
		return tx.Create(&hours).Error
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to seed store config: %w", err)
	}

	logger.Info("default store config created",
		zap.Stringer("store_id", cfg.ID),
		zap.String("rule_type", string(cfg.ActiveRuleType)),
	)
	return cfg.ID, nil
}

func defaultStoreConfig() models.StoreConfig {
	return models.StoreConfig{
		Name:           DefaultStoreName,
		ActiveRuleType: models.RuleTypePostcode,
		PostcodeRules: models.PostcodeRules{
			NormalizeUKPostcode:             true,
			DefaultMinOrderThreshold:        decimal.NewFromInt(15),
			DefaultExtraFeeIfBelowThreshold: decimal.NewFromInt(1),
			Areas: []models.PostcodeArea{
				{Pattern: "WF9 4", Fee: decimal.RequireFromString("2.30")},
				{Pattern: "WF9", Fee: decimal.RequireFromString("5.00")},
			},
		},
		DistanceRules: models.DistanceRules{
			Unit: "miles",
			Bands: []models.DistanceBand{
				{MaxDistance: 1, FeeIfSubtotalGte: decimal.RequireFromString("1.50"), FeeIfSubtotalLt: decimal.RequireFromString("1.50")},
				{MaxDistance: 3, FeeIfSubtotalGte: decimal.RequireFromString("3.50"), FeeIfSubtotalLt: decimal.RequireFromString("3.50")},
			},
			NoServiceBeyond: 3,
		},
		CollectionLeadTimeMinutes: 15,
		CollectionBufferMinutes:   15,
		DeliveryLeadTimeMinutes:   45,
		DeliveryBufferMinutes:     30,
	}
}

// defaultOpeningHours opens 17:00-23:00 every day except Monday.
func defaultOpeningHours() []models.OpeningHours {
	hours := make([]models.OpeningHours, 0, 6)
	for day := 0; day < 7; day++ {
		if day == 1 {
			continue
		}
		hours = append(hours, models.OpeningHours{DayOfWeek: day, OpenTime: "17:00", CloseTime: "23:00"})
	}
	return hours
}
