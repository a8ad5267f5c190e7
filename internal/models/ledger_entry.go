package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a manually posted ledger line.
type LedgerEntry struct {
	Base
	EntryDate    time.Time       `gorm:"not null" json:"entry_date"`
	Particulars  string          `gorm:"not null" json:"particulars"`
	Reference    string          `json:"reference"`
	DebitAmount  decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"debit_amount"`
	CreditAmount decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"credit_amount"`
	CreatedBy    string          `gorm:"type:uuid;<-:create" json:"created_by"`
}
