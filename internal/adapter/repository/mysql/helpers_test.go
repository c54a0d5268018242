package mysql

import (
	"testing"

	"sacco-ledger/internal/domain/account"
	"sacco-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB creates an in-memory sqlite DB with every ledger table.
// A single connection keeps the in-memory database shared by tx and non-tx queries.
func openTestDB(t *testing.T) *gorm.DB {
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
	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeAccount(userID, main string) *account.Account {
	return &account.Account{
		AccountNumber: id.NewNumeric("217", 7),
		AccountCode:   id.NewNumeric("DEX", 7),
		UserID:        userID,
		MainBalance:   decimal.RequireFromString(main),
		Status:        account.StatusActive,
	}
}
