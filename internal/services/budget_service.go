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

var budgetOrderings = []string{"name", "fiscal_year", "allocated_amount", "created_at"}

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a new budget.
func (s *budgetService) CreateBudget(ctx context.Context, input BudgetInput) (*models.Budget, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.FiscalYear = strings.TrimSpace(input.FiscalYear)
	if input.Name == "" || input.FiscalYear == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name and fiscal_year are required")
	}
	if input.AllocatedAmount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "allocated_amount cannot be negative")
	}

	budget := &models.Budget{
		Name:            input.Name,
		FiscalYear:      input.FiscalYear,
		Department:      input.Department,
		AllocatedAmount: input.AllocatedAmount.Round(2),
		Description:     input.Description,
	}
	if err := s.db.WithContext(ctx).Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// GetBudgetByID retrieves a budget by ID.
func (s *budgetService) GetBudgetByID(ctx context.Context, id string) (*models.Budget, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrBudgetNotFound
	}
	var budget models.Budget
	if err := s.db.WithContext(ctx).First(&budget, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// ListBudgets returns a paginated list of budgets, optionally for one fiscal year.
func (s *budgetService) ListBudgets(ctx context.Context, fiscalYear string, params ListParams) (*pagination.PageResponse[models.Budget], error) {
	page := params.Page
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Budget{}).
		Scopes(pagination.Search(params.Search, "name", "department", "description"))
	if fiscalYear != "" {
		base = base.Where("fiscal_year = ?", fiscalYear)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Scopes(pagination.Order(params.Ordering, budgetOrderings, "-created_at"), pagination.Paginate(page)).
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateBudget updates an existing budget.
func (s *budgetService) UpdateBudget(ctx context.Context, id string, input UpdateBudgetInput) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.FiscalYear != nil && strings.TrimSpace(*input.FiscalYear) != "" {
		updates["fiscal_year"] = strings.TrimSpace(*input.FiscalYear)
	}
	if input.Department != nil {
		updates["department"] = *input.Department
	}
	if input.AllocatedAmount != nil {
		if input.AllocatedAmount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "allocated_amount cannot be negative")
		}
		updates["allocated_amount"] = input.AllocatedAmount.Round(2)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetBudgetByID(ctx, budget.ID)
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(ctx context.Context, id string) error {
	budget, err := s.GetBudgetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
