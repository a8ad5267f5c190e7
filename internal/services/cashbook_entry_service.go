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

var cashbookOrderings = []string{"entry_date", "amount", "created_at"}

// cashbookEntryService handles cashbook receipts and payments.
type cashbookEntryService struct {
	db *gorm.DB
}

// NewCashbookEntryService creates a new CashbookEntryServicer.
func NewCashbookEntryService(db *gorm.DB) CashbookEntryServicer {
	return &cashbookEntryService{db: db}
}

func validCashbookEntryType(t models.CashbookEntryType) bool {
	return t == models.CashbookEntryReceipt || t == models.CashbookEntryPayment
}

// CreateCashbookEntry records a cashbook entry attributed to input.CreatedBy.
func (s *cashbookEntryService) CreateCashbookEntry(ctx context.Context, input CashbookEntryInput) (*models.CashbookEntry, error) {
	input.Particulars = strings.TrimSpace(input.Particulars)
	if input.Particulars == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "particulars is required")
	}
	if !validCashbookEntryType(input.EntryType) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "entry_type must be RECEIPT or PAYMENT")
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	entry := &models.CashbookEntry{
		EntryDate:     normalizeDate(input.EntryDate),
		Particulars:   input.Particulars,
		EntryType:     input.EntryType,
		Amount:        input.Amount.Round(2),
		VoucherNumber: input.VoucherNumber,
		CreatedBy:     input.CreatedBy,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entry, nil
}

// GetCashbookEntryByID retrieves a cashbook entry by ID
func (s *cashbookEntryService) GetCashbookEntryByID(ctx context.Context, id string) (*models.CashbookEntry, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrCashbookEntryNotFound
	}
	var entry models.CashbookEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCashbookEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}

// ListCashbookEntries returns a paginated list of cashbook entries,
// optionally limited to one entry type.
func (s *cashbookEntryService) ListCashbookEntries(ctx context.Context, entryType *models.CashbookEntryType, params ListParams) (*pagination.PageResponse[models.CashbookEntry], error) {
	page := params.Page
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.CashbookEntry{}).
		Scopes(pagination.Search(params.Search, "particulars", "voucher_number"))
	if entryType != nil {
		base = base.Where("entry_type = ?", *entryType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.CashbookEntry
	if err := base.Scopes(pagination.Order(params.Ordering, cashbookOrderings, "-entry_date"), pagination.Paginate(page)).
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateCashbookEntry updates a cashbook entry. created_by never changes.
func (s *cashbookEntryService) UpdateCashbookEntry(ctx context.Context, id string, input UpdateCashbookEntryInput) (*models.CashbookEntry, error) {
	entry, err := s.GetCashbookEntryByID(ctx, id)
	if err != nil {
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
	if input.EntryType != nil {
		if !validCashbookEntryType(*input.EntryType) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "entry_type must be RECEIPT or PAYMENT")
		}
		updates["entry_type"] = *input.EntryType
	}
	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = input.Amount.Round(2)
	}
	if input.VoucherNumber != nil {
		updates["voucher_number"] = *input.VoucherNumber
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(entry).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetCashbookEntryByID(ctx, entry.ID)
}

// DeleteCashbookEntry soft-deletes a cashbook entry.
func (s *cashbookEntryService) DeleteCashbookEntry(ctx context.Context, id string) error {
	entry, err := s.GetCashbookEntryByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(entry).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
