package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeCredit || t == TransactionTypeDebit
}

// Transaction is one monetary event on a bank account. Rows are append-only.
type Transaction struct {
	Base
	AccountID       string          `gorm:"type:uuid;not null;index:idx_transactions_account_date" json:"account_id"`
	TransactionType TransactionType `gorm:"not null" json:"transaction_type"`
	Amount          decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `gorm:"not null;index:idx_transactions_account_date" json:"transaction_date"`
	CreatedBy       string          `gorm:"type:uuid" json:"created_by"`

	// Relationships
	Account *BankAccount `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// SignedAmount returns the amount as it applies to the account balance:
// positive for credits, negative for debits.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.TransactionType == TransactionTypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
