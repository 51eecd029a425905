package db

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bellastudio/booking-api/internal/config"
	"github.com/bellastudio/booking-api/internal/logging"
	"github.com/bellastudio/booking-api/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		// Unique-constraint errors must surface as gorm.ErrDuplicatedKey:
		// the booking path reads them to tell replay from slot conflict.
		TranslateError: true,
	})
	if err != nil {
		logging.Log.Fatal("failed to connect database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logging.Log.Fatal("failed to get sql.DB", zap.Error(err))
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		logging.Log.Fatal("failed to migrate", zap.Error(err))
	}

	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Category{},
		&models.Service{},
		&models.User{},
		&models.Client{},
		&models.Appointment{},
		&models.ClientReviewFlag{},
		&models.ContactMessage{},
		&models.AuditLog{},
	)
}
