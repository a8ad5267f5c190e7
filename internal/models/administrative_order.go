package models

import "time"

// AdministrativeOrder is an office order that may refer to the transaction
// it authorised. The reference is weak: it is only a lookup key, never
// preloaded as an owned association and never cascaded.
type AdministrativeOrder struct {
	Base
	OrderNumber          string    `gorm:"uniqueIndex;not null" json:"order_number"`
	Title                string    `gorm:"not null" json:"title"`
	Description          string    `json:"description"`
	IssuedBy             string    `json:"issued_by"`
	OrderDate            time.Time `gorm:"not null" json:"order_date"`
	RelatedTransactionID *string   `gorm:"type:uuid;index" json:"related_transaction_id"`

	RelatedTransaction *Transaction `gorm:"-" json:"related_transaction,omitempty"`
}
