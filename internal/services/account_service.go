package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "collegebank/internal/errors"
	"collegebank/internal/models"
	"collegebank/internal/pagination"
	"collegebank/internal/uuid"
)

var accountOrderings = []string{"balance", "created_at", "account_name", "name"}

// accountService handles bank account business logic.
type accountService struct {
	db       *gorm.DB
	recorder TransactionRecorder
}

// NewAccountService creates a new AccountServicer. Opening balances are
// booked through recorder.
func NewAccountService(db *gorm.DB, recorder TransactionRecorder) AccountServicer {
	return &accountService{db: db, recorder: recorder}
}

// CreateAccount opens a bank account. A positive opening balance is booked
// as a CREDIT in the same database transaction.
func (s *accountService) CreateAccount(ctx context.Context, input CreateAccountInput) (*models.BankAccount, error) {
	input.AccountName = strings.TrimSpace(input.AccountName)
	input.AccountNumber = strings.TrimSpace(input.AccountNumber)
	input.BankName = strings.TrimSpace(input.BankName)
	input.Name = strings.TrimSpace(input.Name)

	if input.AccountName == "" || input.AccountNumber == "" || input.BankName == "" || input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name, account_name, account_number and bank_name are required")
	}
	if input.OpeningBalance.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "opening balance cannot be negative")
	}

	account := &models.BankAccount{
		AccountName:   input.AccountName,
		AccountNumber: input.AccountNumber,
		BankName:      input.BankName,
		Name:          input.Name,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BankAccount{}).Where("account_number = ?", input.AccountNumber).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrDuplicateAccountNumber
		}

		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if input.OpeningBalance.IsPositive() {
			opening, err := s.recorder.RecordWithTx(tx, RecordInput{
				AccountID:   account.ID,
				Type:        models.TransactionTypeCredit,
				Amount:      input.OpeningBalance,
				Description: "Opening balance",
				CreatedBy:   input.CreatedBy,
			})
			if err != nil {
				return err
			}
			account = opening.Account
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return account, nil
}

// GetAccountByID retrieves a bank account by ID
func (s *accountService) GetAccountByID(ctx context.Context, id string) (*models.BankAccount, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrAccountNotFound
	}
	var account models.BankAccount
	if err := s.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// ListAccounts retrieves a paginated list of bank accounts.
func (s *accountService) ListAccounts(ctx context.Context, params ListParams) (*pagination.PageResponse[models.BankAccount], error) {
	page := params.Page
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.BankAccount{}).
		Scopes(pagination.Search(params.Search, "account_name", "account_number", "bank_name", "name"))

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.BankAccount
	if err := base.Scopes(pagination.Order(params.Ordering, accountOrderings, "-created_at"), pagination.Paginate(page)).
		Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateAccount updates the descriptive fields of an account.
func (s *accountService) UpdateAccount(ctx context.Context, id string, input UpdateAccountInput) (*models.BankAccount, error) {
	account, err := s.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.AccountName != nil && strings.TrimSpace(*input.AccountName) != "" {
		updates["account_name"] = strings.TrimSpace(*input.AccountName)
	}
	if input.BankName != nil && strings.TrimSpace(*input.BankName) != "" {
		updates["bank_name"] = strings.TrimSpace(*input.BankName)
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.AccountNumber != nil {
		number := strings.TrimSpace(*input.AccountNumber)
		if number != "" && number != account.AccountNumber {
			var count int64
			if err := s.db.WithContext(ctx).Model(&models.BankAccount{}).
				Where("account_number = ? AND id <> ?", number, account.ID).Count(&count).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if count > 0 {
				return nil, apperrors.ErrDuplicateAccountNumber
			}
			updates["account_number"] = number
		}
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// Reload to get fresh data
		if err := s.db.WithContext(ctx).First(account, "id = ?", account.ID).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return account, nil
}

// DeleteAccount soft-deletes an account that has no transactions. The
// account row stays locked from the check to the delete, so a concurrent
// Record either commits first and blocks the delete, or waits and then
// finds the account gone.
func (s *accountService) DeleteAccount(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx, id)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrAccountHasTransactions
		}

		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
