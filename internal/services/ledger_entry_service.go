package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "collegebank/internal/errors"
	"collegebank/internal/models"
	"collegebank/internal/pagination"
	"collegebank/internal/uuid"
)

var ledgerEntryOrderings = []string{"entry_date", "debit_amount", "credit_amount", "created_at"}

// ledgerEntryService handles manually posted ledger entries. Entries are
// records only and never move an account balance.
type ledgerEntryService struct {
	db *gorm.DB
}

// NewLedgerEntryService creates a new LedgerEntryServicer.
func NewLedgerEntryService(db *gorm.DB) LedgerEntryServicer {
	return &ledgerEntryService{db: db}
}

func validateLedgerAmounts(debit, credit decimal.Decimal) error {
	if debit.IsNegative() || credit.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amounts cannot be negative")
	}
	if !debit.IsPositive() && !credit.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "debit_amount or credit_amount must be greater than zero")
	}
	return nil
}

// CreateLedgerEntry posts a ledger entry attributed to input.CreatedBy.
func (s *ledgerEntryService) CreateLedgerEntry(ctx context.Context, input LedgerEntryInput) (*models.LedgerEntry, error) {
	input.Particulars = strings.TrimSpace(input.Particulars)
	if input.Particulars == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "particulars is required")
	}
	if err := validateLedgerAmounts(input.DebitAmount, input.CreditAmount); err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		EntryDate:    normalizeDate(input.EntryDate),
		Particulars:  input.Particulars,
		Reference:    input.Reference,
		DebitAmount:  input.DebitAmount.Round(2),
		CreditAmount: input.CreditAmount.Round(2),
		CreatedBy:    input.CreatedBy,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entry, nil
}

// GetLedgerEntryByID retrieves a ledger entry by ID
func (s *ledgerEntryService) GetLedgerEntryByID(ctx context.Context, id string) (*models.LedgerEntry, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrLedgerEntryNotFound
	}
	var entry models.LedgerEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLedgerEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}

// ListLedgerEntries returns a paginated list of ledger entries.
func (s *ledgerEntryService) ListLedgerEntries(ctx context.Context, params ListParams) (*pagination.PageResponse[models.LedgerEntry], error) {
	page := params.Page
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Scopes(pagination.Search(params.Search, "particulars", "reference"))

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.LedgerEntry
	if err := base.Scopes(pagination.Order(params.Ordering, ledgerEntryOrderings, "-entry_date"), pagination.Paginate(page)).
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateLedgerEntry updates a ledger entry. created_by never changes.
func (s *ledgerEntryService) UpdateLedgerEntry(ctx context.Context, id string, input UpdateLedgerEntryInput) (*models.LedgerEntry, error) {
	entry, err := s.GetLedgerEntryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	debit, credit := entry.DebitAmount, entry.CreditAmount
	if input.DebitAmount != nil {
		debit = input.DebitAmount.Round(2)
	}
	if input.CreditAmount != nil {
		credit = input.CreditAmount.Round(2)
	}
	if err := validateLedgerAmounts(debit, credit); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.EntryDate != nil {
		updates["entry_date"] = normalizeDate(*input.EntryDate)
	}
	if input.Particulars != nil {
		particulars := strings.TrimSpace(*input.Particulars)
		if particulars == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "particulars cannot be empty")
		}
		updates["particulars"] = particulars
	}
	if input.Reference != nil {
		updates["reference"] = *input.Reference
	}
	if input.DebitAmount != nil {
		updates["debit_amount"] = debit
	}
	if input.CreditAmount != nil {
		updates["credit_amount"] = credit
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(entry).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetLedgerEntryByID(ctx, entry.ID)
}

// DeleteLedgerEntry soft-deletes a ledger entry.
func (s *ledgerEntryService) DeleteLedgerEntry(ctx context.Context, id string) error {
	entry, err := s.GetLedgerEntryByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(entry).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
