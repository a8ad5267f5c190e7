package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashbookEntryType is the side of the cashbook an entry is posted to
type CashbookEntryType string

const (
	CashbookEntryReceipt CashbookEntryType = "RECEIPT"
	CashbookEntryPayment CashbookEntryType = "PAYMENT"
)

// CashbookEntry is a cash receipt or cash payment recorded in the cashbook.
type CashbookEntry struct {
	Base
	EntryDate     time.Time         `gorm:"not null" json:"entry_date"`
	Particulars   string            `gorm:"not null" json:"particulars"`
	EntryType     CashbookEntryType `gorm:"not null" json:"entry_type"`
	Amount        decimal.Decimal   `gorm:"type:numeric(18,2);not null" json:"amount"`
	VoucherNumber string            `json:"voucher_number"`
	CreatedBy     string            `gorm:"type:uuid;<-:create" json:"created_by"`
}
