package config

import (
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

// ConnectDB opens the MySQL connection and migrates every table we own.
func ConnectDB(cfg DBConfig, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.BuildDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errs.Wrap(err, "failed to get sql.DB")
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("database connected")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Partner{},
		&models.Booking{},
		&models.Review{},
		&models.Notification{},
		&models.NotificationPreference{},
	)
	return errs.Wrap(err, "failed to migrate database")
}
