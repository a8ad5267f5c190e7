package models

// Payment is an outgoing payment. It always owns exactly one DEBIT
// transaction and is created in the same unit of work.
type Payment struct {
	Base
	TransactionID   string `gorm:"type:uuid;uniqueIndex;not null" json:"transaction_id"`
	Payee           string `gorm:"not null" json:"payee"`
	Purpose         string `json:"purpose"`
	PaymentMethod   string `json:"payment_method"`
	ReferenceNumber string `json:"reference_number"`

	// Relationships
	Transaction *Transaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
}
