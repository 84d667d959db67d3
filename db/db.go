package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"equipment_lending_client/models"
)

// Connect opens the audit database and migrates it.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database connected")
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.ActionLog{}); err != nil {
		return err
	}
	// Latest-first listing per target.
	return db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_target_created_desc
	  ON %s (target_type, target_id, created_at DESC);
	`, models.ActionLogTable, models.ActionLogTable)).Error
}
