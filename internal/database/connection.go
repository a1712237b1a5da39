// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Mohit-R-04/FarmToMarket/internal/config"
	"github.com/Mohit-R-04/FarmToMarket/internal/models"
)

var DB *gorm.DB

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// NewGormConfig translates driver errors so unique violations surface as
// gorm.ErrDuplicatedKey.
func NewGormConfig(logLevel string) *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormLogLevel(logLevel),
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), NewGormConfig(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithField("target", cfg.Target()).Info("Database connection established")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Product{},
		&models.JourneyStep{},
		&models.SellerRequest{},
		&models.TransporterRequest{},
		&models.Booking{},
		&models.Notification{},
		&models.AuditLog{},
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	// gen_random_uuid() is built in from Postgres 13, pgcrypto covers older servers
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createConstraints(db); err != nil {
		return fmt.Errorf("failed to create constraints: %w", err)
	}

	createIndexes(db)

	logrus.Info("Database migrations completed")
	return nil
}

// Partial unique indexes are the final arbiter for one-active-request and
// one-live-booking. Migration fails if any cannot be created.
func createConstraints(db *gorm.DB) error {
	constraints := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_seller_requests_active
			ON seller_requests(product_id, seller_id)
			WHERE status IN ('PENDING', 'ACCEPTED')`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_seller_requests_accepted_product
			ON seller_requests(product_id)
			WHERE status = 'ACCEPTED'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_transporter_requests_active
			ON transporter_requests(product_id, transporter_id)
			WHERE status IN ('PENDING', 'ACCEPTED')`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_bookings_live_product
			ON bookings(product_id)
			WHERE status IN ('PENDING', 'ACCEPTED', 'PICKED_UP')`,
	}

	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func createIndexes(db *gorm.DB) {
	indexes := []string{
		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_farmer_status ON products(farmer_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Request indexes
		"CREATE INDEX IF NOT EXISTS idx_seller_requests_seller_status ON seller_requests(seller_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_transporter_requests_transporter_status ON transporter_requests(transporter_id, status)",

		// Booking indexes
		"CREATE INDEX IF NOT EXISTS idx_bookings_transporter_status ON bookings(transporter_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_bookings_farmer_status ON bookings(farmer_id, status)",

		// Notification indexes
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at DESC)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_actor_action ON audit_logs(actor_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Continue with other indexes instead of failing completely
			logrus.WithError(err).WithField("statement", index).Warn("Failed to create index")
		}
	}
}

// SeedAdmin makes sure the configured identity has the ADMIN role.
func SeedAdmin(db *gorm.DB, userID, email string) error {
	if userID == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin := &models.User{
		ID:       userID,
		Email:    email,
		Role:     models.RoleAdmin,
		RoleData: models.JSONB{"name": "Administrator"},
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logrus.WithField("user_id", userID).Info("Admin user seeded")
	return nil
}
