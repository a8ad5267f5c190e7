package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "collegebank/internal/errors"
	"collegebank/internal/logger"
	"collegebank/internal/models"
	"collegebank/internal/pagination"
	"collegebank/internal/uuid"
)

var transactionOrderings = []string{"amount", "transaction_date", "created_at"}

// transactionService handles transaction-related business logic. It is the
// single writer of bank_accounts.balance.
type transactionService struct {
	db             *gorm.DB
	allowOverdraft bool
}

// NewTransactionService creates a new TransactionServicer. When
// allowOverdraft is false a DEBIT may not take a balance below zero.
func NewTransactionService(db *gorm.DB, allowOverdraft bool) TransactionServicer {
	return &transactionService{
		db:             db,
		allowOverdraft: allowOverdraft,
	}
}

// Record validates input, then books the transaction and applies it to the
// account balance in one database transaction.
func (s *transactionService) Record(ctx context.Context, input RecordInput) (*models.Transaction, error) {
	input, err := validateRecordInput(input)
	if err != nil {
		return nil, err
	}

	var result *models.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.record(tx, input)
		return txErr
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return result, nil
}

// RecordWithTx books the transaction using the caller's database transaction.
// The caller owns commit and rollback.
func (s *transactionService) RecordWithTx(tx *gorm.DB, input RecordInput) (*models.Transaction, error) {
	input, err := validateRecordInput(input)
	if err != nil {
		return nil, err
	}
	return s.record(tx, input)
}

func validateRecordInput(input RecordInput) (RecordInput, error) {
	if !input.Amount.IsPositive() {
		return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !input.Type.Valid() {
		return input, apperrors.ErrInvalidTransactionType
	}
	input.AccountID = strings.TrimSpace(input.AccountID)
	if input.AccountID == "" {
		return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "account_id is required")
	}
	input.Amount = input.Amount.Round(2)
	input.TransactionDate = normalizeDate(input.TransactionDate)
	return input, nil
}

// record locks the account row, inserts the transaction and moves the
// balance with a single relative UPDATE.
func (s *transactionService) record(tx *gorm.DB, input RecordInput) (*models.Transaction, error) {
	account, err := lockAccount(tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		AccountID:       account.ID,
		TransactionType: input.Type,
		Amount:          input.Amount,
		Description:     input.Description,
		TransactionDate: input.TransactionDate,
		CreatedBy:       input.CreatedBy,
	}
	delta := transaction.SignedAmount()

	if !s.allowOverdraft && account.Balance.Add(delta).IsNegative() {
		return nil, apperrors.ErrInsufficientBalance
	}

	if err := tx.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	res := tx.Exec("UPDATE bank_accounts SET balance = ROUND(balance + ?, 2), updated_at = ? WHERE id = ? AND deleted_at IS NULL",
		delta, time.Now(), account.ID)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected != 1 {
		cause := fmt.Errorf("balance update for account %s affected %d rows", account.ID, res.RowsAffected)
		logger.Get().Errorw("ledger consistency violation",
			"error", cause,
			"account_id", account.ID,
			"transaction_id", transaction.ID,
			"request_id", logger.RequestID(tx.Statement.Context),
		)
		return nil, apperrors.Wrap(apperrors.ErrConsistency, cause)
	}

	var updated models.BankAccount
	if err := tx.First(&updated, "id = ?", account.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	transaction.Account = &updated

	return transaction, nil
}

// lockAccount loads the account with a row lock held until the surrounding
// database transaction ends.
func lockAccount(tx *gorm.DB, accountID string) (*models.BankAccount, error) {
	if !uuid.IsValid(accountID) {
		return nil, apperrors.ErrAccountNotFound
	}
	var account models.BankAccount
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, "id = ?", accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// normalizeDate reduces t to its calendar date at UTC midnight. The zero
// time means today.
func normalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// GetTransactionByID retrieves a transaction with its account.
func (s *transactionService) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrTransactionNotFound
	}
	var transaction models.Transaction
	if err := s.db.WithContext(ctx).Preload("Account").First(&transaction, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// ListTransactions retrieves a paginated, filtered list of transactions.
// Search matches the description and the account's identifying fields.
func (s *transactionService) ListTransactions(ctx context.Context, filter TransactionFilter, params ListParams) (*pagination.PageResponse[models.Transaction], error) {
	page := params.Page
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Joins("LEFT JOIN bank_accounts ON bank_accounts.id = transactions.account_id").
		Scopes(pagination.Search(params.Search,
			"transactions.description",
			"bank_accounts.account_name",
			"bank_accounts.account_number",
			"bank_accounts.bank_name",
			"bank_accounts.name",
		))
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Account").
		Scopes(pagination.Order(params.Ordering, transactionOrderings, "-transaction_date"), pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Type != nil {
		q = q.Where("transactions.transaction_type = ?", *f.Type)
	}
	if f.AccountID != nil {
		q = q.Where("transactions.account_id = ?", *f.AccountID)
	}
	if f.FromDate != nil {
		q = q.Where("transactions.transaction_date >= ?", normalizeDate(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("transactions.transaction_date <= ?", normalizeDate(*f.ToDate))
	}
	return q
}
