package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// OpenGorm opens the ledger database for driver ("mysql" or "sqlite").
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case DriverMySQL:
		return OpenGormWithDialector(mysql.Open(dsn))
	case DriverSQLite:
		db, err := OpenGormWithDialector(sqlite.Open(dsn))
		if err != nil {
			return nil, err
		}
		// sqlite serialises writers anyway; one connection also keeps
		// :memory: databases shared.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
}

func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Printf("gorm: connected (%s)", dial.Name())
	return db, nil
}

// Migrate creates or updates the given tables.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	log.Printf("gorm: migrated %d tables", len(models))
	return nil
}
