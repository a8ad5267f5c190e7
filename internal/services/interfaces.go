package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"collegebank/internal/models"
	"collegebank/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	AttemptLogin(ctx context.Context, login, password string) (*models.User, error)
	StoreRefreshTokenHash(ctx context.Context, userID, tokenHash string) error
	GetRefreshTokenHash(ctx context.Context, userID string) (string, error)
}

// CreateUserInput holds the fields for registering a user.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// CreateAccountInput holds the fields for opening a bank account.
type CreateAccountInput struct {
	AccountName    string
	AccountNumber  string
	BankName       string
	Name           string
	OpeningBalance decimal.Decimal
	CreatedBy      string
}

// UpdateAccountInput holds the descriptive fields of an account. Nil fields
// are left unchanged. The balance is only changed by the TransactionRecorder.
type UpdateAccountInput struct {
	AccountName   *string
	AccountNumber *string
	BankName      *string
	Name          *string
}

// ListParams holds the common listing parameters.
type ListParams struct {
	Search   string
	Ordering string
	Page     pagination.PageRequest
}

// AccountServicer defines the contract for bank account business logic.
type AccountServicer interface {
	CreateAccount(ctx context.Context, input CreateAccountInput) (*models.BankAccount, error)
	GetAccountByID(ctx context.Context, id string) (*models.BankAccount, error)
	ListAccounts(ctx context.Context, params ListParams) (*pagination.PageResponse[models.BankAccount], error)
	UpdateAccount(ctx context.Context, id string, input UpdateAccountInput) (*models.BankAccount, error)
	DeleteAccount(ctx context.Context, id string) error
}

// RecordInput describes one monetary event to book against an account.
type RecordInput struct {
	AccountID       string
	Type            models.TransactionType
	Amount          decimal.Decimal
	Description     string
	TransactionDate time.Time
	CreatedBy       string
}

// TransactionRecorder is the only way to change an account balance.
type TransactionRecorder interface {
	// Record books the transaction and applies it to the account balance
	// in its own database transaction.
	Record(ctx context.Context, input RecordInput) (*models.Transaction, error)
	// RecordWithTx does the same inside the caller's database transaction.
	RecordWithTx(tx *gorm.DB, input RecordInput) (*models.Transaction, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Type      *models.TransactionType
	AccountID *string
	FromDate  *time.Time
	ToDate    *time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	TransactionRecorder
	GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter, params ListParams) (*pagination.PageResponse[models.Transaction], error)
}

// PaymentTransactionInput holds the nested transaction details of a payment.
// Type is accepted for compatibility but always replaced by DEBIT.
type PaymentTransactionInput struct {
	AccountID       string
	Amount          decimal.Decimal
	Description     string
	TransactionDate time.Time
	Type            models.TransactionType
}

// CreatePaymentInput holds the fields for an outgoing payment.
type CreatePaymentInput struct {
	Transaction     *PaymentTransactionInput
	Payee           string
	Purpose         string
	PaymentMethod   string
	ReferenceNumber string
	CreatedBy       string
}

// PaymentServicer defines the contract for payment business logic.
type PaymentServicer interface {
	CreatePayment(ctx context.Context, input CreatePaymentInput) (*models.Payment, error)
	GetPaymentByID(ctx context.Context, id string) (*models.Payment, error)
	ListPayments(ctx context.Context, params ListParams) (*pagination.PageResponse[models.Payment], error)
}

// StatementRequest holds the raw statement parameters as received.
type StatementRequest struct {
	AccountID string
	StartDate string
	EndDate   string
}

// StatementPeriod is the inclusive date range of a statement.
type StatementPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Statement is an account snapshot plus its transactions for a period.
type Statement struct {
	Account      *models.BankAccount  `json:"account"`
	Transactions []models.Transaction `json:"transactions"`
	Period       StatementPeriod      `json:"period"`
	TotalCredits decimal.Decimal      `json:"total_credits"`
	TotalDebits  decimal.Decimal      `json:"total_debits"`
}

// StatementServicer defines the contract for statement generation.
type StatementServicer interface {
	GenerateStatement(ctx context.Context, req StatementRequest) (*Statement, error)
}

// CreateOrderInput holds the fields for an administrative order.
type CreateOrderInput struct {
	OrderNumber          string
	Title                string
	Description          string
	IssuedBy             string
	OrderDate            time.Time
	RelatedTransactionID *string
}

// UpdateOrderInput holds the updatable order fields. Nil fields are left
// unchanged; a RelatedTransactionID pointing at "" clears the link.
type UpdateOrderInput struct {
	OrderNumber          *string
	Title                *string
	Description          *string
	IssuedBy             *string
	OrderDate            *time.Time
	RelatedTransactionID *string
}

// AdministrativeOrderServicer defines the contract for administrative orders.
type AdministrativeOrderServicer interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.AdministrativeOrder, error)
	GetOrderByID(ctx context.Context, id string) (*models.AdministrativeOrder, error)
	ListOrders(ctx context.Context, params ListParams) (*pagination.PageResponse[models.AdministrativeOrder], error)
	UpdateOrder(ctx context.Context, id string, input UpdateOrderInput) (*models.AdministrativeOrder, error)
	DeleteOrder(ctx context.Context, id string) error
}

// LedgerEntryInput holds the fields of a ledger entry.
type LedgerEntryInput struct {
	EntryDate    time.Time
	Particulars  string
	Reference    string
	DebitAmount  decimal.Decimal
	CreditAmount decimal.Decimal
	CreatedBy    string
}

// UpdateLedgerEntryInput holds the updatable ledger entry fields.
type UpdateLedgerEntryInput struct {
	EntryDate    *time.Time
	Particulars  *string
	Reference    *string
	DebitAmount  *decimal.Decimal
	CreditAmount *decimal.Decimal
}

// LedgerEntryServicer defines the contract for ledger entries.
type LedgerEntryServicer interface {
	CreateLedgerEntry(ctx context.Context, input LedgerEntryInput) (*models.LedgerEntry, error)
	GetLedgerEntryByID(ctx context.Context, id string) (*models.LedgerEntry, error)
	ListLedgerEntries(ctx context.Context, params ListParams) (*pagination.PageResponse[models.LedgerEntry], error)
	UpdateLedgerEntry(ctx context.Context, id string, input UpdateLedgerEntryInput) (*models.LedgerEntry, error)
	DeleteLedgerEntry(ctx context.Context, id string) error
}

// CashbookEntryInput holds the fields of a cashbook entry.
type CashbookEntryInput struct {
	EntryDate     time.Time
	Particulars   string
	EntryType     models.CashbookEntryType
	Amount        decimal.Decimal
	VoucherNumber string
	CreatedBy     string
}

// UpdateCashbookEntryInput holds the updatable cashbook entry fields.
type UpdateCashbookEntryInput struct {
	EntryDate     *time.Time
	Particulars   *string
	EntryType     *models.CashbookEntryType
	Amount        *decimal.Decimal
	VoucherNumber *string
}

// CashbookEntryServicer defines the contract for cashbook entries.
type CashbookEntryServicer interface {
	CreateCashbookEntry(ctx context.Context, input CashbookEntryInput) (*models.CashbookEntry, error)
	GetCashbookEntryByID(ctx context.Context, id string) (*models.CashbookEntry, error)
	ListCashbookEntries(ctx context.Context, entryType *models.CashbookEntryType, params ListParams) (*pagination.PageResponse[models.CashbookEntry], error)
	UpdateCashbookEntry(ctx context.Context, id string, input UpdateCashbookEntryInput) (*models.CashbookEntry, error)
	DeleteCashbookEntry(ctx context.Context, id string) error
}

// BudgetInput holds the fields of a budget.
type BudgetInput struct {
	Name            string
	FiscalYear      string
	Department      string
	AllocatedAmount decimal.Decimal
	Description     string
}

// UpdateBudgetInput holds the updatable budget fields.
type UpdateBudgetInput struct {
	Name            *string
	FiscalYear      *string
	Department      *string
	AllocatedAmount *decimal.Decimal
	Description     *string
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(ctx context.Context, input BudgetInput) (*models.Budget, error)
	GetBudgetByID(ctx context.Context, id string) (*models.Budget, error)
	ListBudgets(ctx context.Context, fiscalYear string, params ListParams) (*pagination.PageResponse[models.Budget], error)
	UpdateBudget(ctx context.Context, id string, input UpdateBudgetInput) (*models.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
}

// AuditEvent describes one audited back-office action.
type AuditEvent struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	Changes      map[string]interface{}
}

// AuditFilter narrows an audit trail query. Empty fields match everything.
type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
}

// AuditServicer records and reads the audit trail.
type AuditServicer interface {
	// Record never fails the caller; write errors are only logged.
	Record(ctx context.Context, event AuditEvent)
	ListAuditLogs(ctx context.Context, filter AuditFilter, params ListParams) (*pagination.PageResponse[models.AuditLog], error)
}
