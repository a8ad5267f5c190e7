package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "collegebank/internal/errors"
	"collegebank/internal/models"
)

// AssertAppError checks that err carries the expected AppError code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error %s, got nil", expectedCode)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("error code = %s, want %s (message: %s)", appErr.Code, expectedCode, appErr.Message)
	}
}

// AssertNoError fails the test immediately on err.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertAmount compares money at cent precision, so "300" and "300.00" match.
func AssertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()

	expected, err := decimal.NewFromString(want)
	if err != nil {
		t.Fatalf("bad expected amount %q: %v", want, err)
	}
	if !got.Round(2).Equal(expected.Round(2)) {
		t.Errorf("amount = %s, want %s", got.StringFixed(2), expected.StringFixed(2))
	}
}

// AssertBalanceMatchesTransactions reloads the account and checks that its
// stored balance equals its credits minus its debits.
func AssertBalanceMatchesTransactions(t *testing.T, db *gorm.DB, accountID string) {
	t.Helper()

	var account models.BankAccount
	if err := db.First(&account, "id = ?", accountID).Error; err != nil {
		t.Fatalf("failed to load account %s: %v", accountID, err)
	}
	var txs []models.Transaction
	if err := db.Where("account_id = ?", accountID).Find(&txs).Error; err != nil {
		t.Fatalf("failed to load transactions: %v", err)
	}

	sum := decimal.Zero
	for i := range txs {
		sum = sum.Add(txs[i].SignedAmount())
	}
	if !account.Balance.Equal(sum) {
		t.Errorf("balance %s does not match transactions total %s", account.Balance.StringFixed(2), sum.StringFixed(2))
	}
}
