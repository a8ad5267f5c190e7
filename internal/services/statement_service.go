package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "collegebank/internal/errors"
	"collegebank/internal/models"
	"collegebank/internal/uuid"
)

const statementDateLayout = "2006-01-02"

// statementService builds account statements. It only reads.
type statementService struct {
	db *gorm.DB
}

// NewStatementService creates a new StatementServicer.
func NewStatementService(db *gorm.DB) StatementServicer {
	return &statementService{db: db}
}

// GenerateStatement returns the account snapshot and its transactions dated
// within [StartDate, EndDate], oldest first.
func (s *statementService) GenerateStatement(ctx context.Context, req StatementRequest) (*Statement, error) {
	accountID := strings.TrimSpace(req.AccountID)
	rawStart := strings.TrimSpace(req.StartDate)
	rawEnd := strings.TrimSpace(req.EndDate)
	if accountID == "" || rawStart == "" || rawEnd == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account_id, start_date, and end_date are required")
	}

	start, err := ParseDate(rawStart)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date must be YYYY-MM-DD")
	}
	end, err := ParseDate(rawEnd)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end_date must be YYYY-MM-DD")
	}
	if start.After(end) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date must not be after end_date")
	}

	if !uuid.IsValid(accountID) {
		return nil, apperrors.ErrAccountNotFound
	}

	db := s.db.WithContext(ctx)

	var account models.BankAccount
	if err := db.First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := db.Where("account_id = ? AND transaction_date BETWEEN ? AND ?", account.ID, start, end).
		Order("transaction_date ASC, created_at ASC, id ASC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	statement := &Statement{
		Account:      &account,
		Transactions: transactions,
		Period: StatementPeriod{
			StartDate: start.Format(statementDateLayout),
			EndDate:   end.Format(statementDateLayout),
		},
		TotalCredits: decimal.Zero,
		TotalDebits:  decimal.Zero,
	}
	for i := range transactions {
		switch transactions[i].TransactionType {
		case models.TransactionTypeCredit:
			statement.TotalCredits = statement.TotalCredits.Add(transactions[i].Amount)
		case models.TransactionTypeDebit:
			statement.TotalDebits = statement.TotalDebits.Add(transactions[i].Amount)
		}
	}

	return statement, nil
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar date at
// UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(statementDateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	return normalizeDate(t), nil
}
