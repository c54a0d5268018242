// Package testdb opens a throwaway in-memory ledger database for usecase tests.
package testdb

import (
	"testing"

	"sacco-ledger/internal/adapter/repository/mysql"
	"sacco-ledger/internal/domain/account"
	"sacco-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated sqlite :memory: DB and a unit of work over it.
// One open connection keeps every query on the same in-memory database.
func Open(t *testing.T) (*gorm.DB, *mysql.GormUoW) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(mysql.Models()...); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db, mysql.NewGormUoW(db)
}

// Seed inserts an active account with the given balances (decimal strings).
func Seed(t *testing.T, db *gorm.DB, userID, main, mobileMoney string) *account.Account {
	t.Helper()
	a := &account.Account{
		AccountNumber:      id.NewNumeric("217", 7),
		AccountCode:        id.NewNumeric("DEX", 7),
		UserID:             userID,
		MainBalance:        decimal.RequireFromString(main),
		MobileMoneyBalance: decimal.RequireFromString(mobileMoney),
		Status:             account.StatusActive,
		KYCSubmitted:       true,
		KYCConfirmed:       true,
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return a
}

// Reload reads the account back from the database.
func Reload(t *testing.T, db *gorm.DB, accountID uint64) *account.Account {
	t.Helper()
	var a account.Account
	if err := db.First(&a, accountID).Error; err != nil {
		t.Fatalf("reload account %d: %v", accountID, err)
	}
	return &a
}

// Count returns the number of rows in the table of model.
func Count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// UserID builds a 32-char hex user id from a single repeated hex digit.
func UserID(c byte) string {
	b := make([]byte, 32)
	for i := range b {
		b[i] = c
	}
	return string(b)
}
