package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"collegebank/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique username.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWithCredentials(t, db, fmt.Sprintf("user%d", n), fmt.Sprintf("user%d@college.test", n))
}

// CreateTestUserWithCredentials creates a user with the given username and
// email. The password is always "password123".
func CreateTestUserWithCredentials(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBankAccount creates a bank account with zero balance.
func CreateTestBankAccount(t *testing.T, db *gorm.DB) *models.BankAccount {
	t.Helper()
	return CreateTestBankAccountWithBalance(t, db, "0")
}

// CreateTestBankAccountWithBalance creates a bank account whose balance is
// seeded directly on insert, without a backing transaction.
func CreateTestBankAccountWithBalance(t *testing.T, db *gorm.DB, balance string) *models.BankAccount {
	t.Helper()

	n := nextID()
	account := &models.BankAccount{
		AccountName:   fmt.Sprintf("College Fund %d", n),
		AccountNumber: fmt.Sprintf("ACC%06d", n),
		BankName:      "State Bank",
		Name:          fmt.Sprintf("Fund %d", n),
		Balance:       decimal.RequireFromString(balance),
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test bank account: %v", err)
	}
	return account
}

// CreateTestTransaction inserts a transaction row directly. The account
// balance is left untouched, so use it only where the balance is irrelevant.
func CreateTestTransaction(t *testing.T, db *gorm.DB, accountID string, txType models.TransactionType, amount string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		AccountID:       accountID,
		TransactionType: txType,
		Amount:          decimal.RequireFromString(amount),
		Description:     fmt.Sprintf("Test transaction %d", nextID()),
		TransactionDate: date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
