package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"collegebank/internal/models"
)

var ctx = context.Background()

// balanceOf reloads an account's balance straight from the table.
func balanceOf(t *testing.T, db *gorm.DB, accountID string) string {
	t.Helper()
	var account models.BankAccount
	if err := db.First(&account, "id = ?", accountID).Error; err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	return account.Balance.StringFixed(2)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
