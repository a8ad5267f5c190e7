package models

import "github.com/shopspring/decimal"

// BankAccount is an institutional bank account. Balance is written once on
// insert and afterwards only by the transaction recorder's atomic
// increment; the "<-:create" permission makes GORM drop it from every
// Save/Update so no other code path can overwrite it.
type BankAccount struct {
	Base
	AccountName   string          `gorm:"not null" json:"account_name"`
	AccountNumber string          `gorm:"uniqueIndex;not null" json:"account_number"`
	BankName      string          `gorm:"not null" json:"bank_name"`
	Name          string          `gorm:"not null" json:"name"`
	Balance       decimal.Decimal `gorm:"<-:create;type:numeric(18,2);not null;default:0" json:"balance"`
}
