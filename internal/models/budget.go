package models

import "github.com/shopspring/decimal"

// Budget is a departmental spending plan for a fiscal year.
type Budget struct {
	Base
	Name            string          `gorm:"not null" json:"name"`
	FiscalYear      string          `gorm:"not null" json:"fiscal_year"`
	Department      string          `json:"department"`
	AllocatedAmount decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"allocated_amount"`
	Description     string          `json:"description"`
}
