package database

import (
	"fmt"

	"github.com/banterhq/banter/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		// Unique violations must surface as gorm.ErrDuplicatedKey so the
		// repositories can map them to Conflict.
		TranslateError: true,
	}
}

// Open connects to Postgres with the configured pool limits.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetPostgresConnectionString()), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.Postgres.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	}
	if cfg.Postgres.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	}
	if cfg.Postgres.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
	}

	return db, nil
}
