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

var orderOrderings = []string{"order_date", "order_number", "created_at"}

// administrativeOrderService handles administrative orders and their weak
// link to a transaction.
type administrativeOrderService struct {
	db *gorm.DB
}

// NewAdministrativeOrderService creates a new AdministrativeOrderServicer.
func NewAdministrativeOrderService(db *gorm.DB) AdministrativeOrderServicer {
	return &administrativeOrderService{db: db}
}

// CreateOrder creates an administrative order. A related transaction id,
// when given, must name an existing transaction.
func (s *administrativeOrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.AdministrativeOrder, error) {
	input.OrderNumber = strings.TrimSpace(input.OrderNumber)
	input.Title = strings.TrimSpace(input.Title)
	if input.OrderNumber == "" || input.Title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "order_number and title are required")
	}

	db := s.db.WithContext(ctx)
	if err := s.ensureOrderNumberFree(db, input.OrderNumber, ""); err != nil {
		return nil, err
	}

	related, err := s.resolveLink(db, input.RelatedTransactionID)
	if err != nil {
		return nil, err
	}

	order := &models.AdministrativeOrder{
		OrderNumber: input.OrderNumber,
		Title:       input.Title,
		Description: input.Description,
		IssuedBy:    input.IssuedBy,
		OrderDate:   normalizeDate(input.OrderDate),
	}
	if related != nil {
		order.RelatedTransactionID = &related.ID
	}

	if err := db.Create(order).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	order.RelatedTransaction = related

	return order, nil
}

// GetOrderByID retrieves an order and resolves its transaction link.
func (s *administrativeOrderService) GetOrderByID(ctx context.Context, id string) (*models.AdministrativeOrder, error) {
	order, err := s.findOrder(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := s.attachTransactions(s.db.WithContext(ctx), []*models.AdministrativeOrder{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders returns a paginated list of orders with links resolved.
func (s *administrativeOrderService) ListOrders(ctx context.Context, params ListParams) (*pagination.PageResponse[models.AdministrativeOrder], error) {
	page := params.Page
	page.Defaults()

	db := s.db.WithContext(ctx)
	base := db.Model(&models.AdministrativeOrder{}).
		Scopes(pagination.Search(params.Search, "order_number", "title", "issued_by"))

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var orders []models.AdministrativeOrder
	if err := base.Scopes(pagination.Order(params.Ordering, orderOrderings, "-order_date"), pagination.Paginate(page)).
		Find(&orders).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ptrs := make([]*models.AdministrativeOrder, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := s.attachTransactions(db, ptrs); err != nil {
		return nil, err
	}

	result := pagination.NewPageResponse(orders, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateOrder updates an order. RelatedTransactionID set to "" unlinks it.
func (s *administrativeOrderService) UpdateOrder(ctx context.Context, id string, input UpdateOrderInput) (*models.AdministrativeOrder, error) {
	db := s.db.WithContext(ctx)
	order, err := s.findOrder(db, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.OrderNumber != nil {
		number := strings.TrimSpace(*input.OrderNumber)
		if number == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "order_number cannot be empty")
		}
		if number != order.OrderNumber {
			if err := s.ensureOrderNumberFree(db, number, order.ID); err != nil {
				return nil, err
			}
			updates["order_number"] = number
		}
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title cannot be empty")
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.IssuedBy != nil {
		updates["issued_by"] = *input.IssuedBy
	}
	if input.OrderDate != nil {
		updates["order_date"] = normalizeDate(*input.OrderDate)
	}
	if input.RelatedTransactionID != nil {
		related, err := s.resolveLink(db, input.RelatedTransactionID)
		if err != nil {
			return nil, err
		}
		if related == nil {
			updates["related_transaction_id"] = nil
		} else {
			updates["related_transaction_id"] = related.ID
		}
	}

	if len(updates) > 0 {
		if err := db.Model(order).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetOrderByID(ctx, order.ID)
}

// DeleteOrder soft-deletes an order. The linked transaction is untouched.
func (s *administrativeOrderService) DeleteOrder(ctx context.Context, id string) error {
	db := s.db.WithContext(ctx)
	order, err := s.findOrder(db, id)
	if err != nil {
		return err
	}
	if err := db.Delete(order).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *administrativeOrderService) findOrder(db *gorm.DB, id string) (*models.AdministrativeOrder, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrOrderNotFound
	}
	var order models.AdministrativeOrder
	if err := db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &order, nil
}

func (s *administrativeOrderService) ensureOrderNumberFree(db *gorm.DB, number, exceptID string) error {
	q := db.Model(&models.AdministrativeOrder{}).Where("order_number = ?", number)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateOrderNumber
	}
	return nil
}

// resolveLink looks up the referenced transaction. Nil or blank ids resolve
// to no link.
func (s *administrativeOrderService) resolveLink(db *gorm.DB, id *string) (*models.Transaction, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	ref := strings.TrimSpace(*id)
	if !uuid.IsValid(ref) {
		return nil, apperrors.ErrTransactionNotFound
	}
	var transaction models.Transaction
	if err := db.First(&transaction, "id = ?", ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// attachTransactions fills RelatedTransaction for every order with a link.
// A link whose transaction no longer exists is left unresolved.
func (s *administrativeOrderService) attachTransactions(db *gorm.DB, orders []*models.AdministrativeOrder) error {
	var ids []string
	for _, o := range orders {
		if o.RelatedTransactionID != nil {
			ids = append(ids, *o.RelatedTransactionID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var transactions []models.Transaction
	if err := db.Where("id IN ?", ids).Find(&transactions).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	byID := make(map[string]*models.Transaction, len(transactions))
	for i := range transactions {
		byID[transactions[i].ID] = &transactions[i]
	}
	for _, o := range orders {
		if o.RelatedTransactionID != nil {
			o.RelatedTransaction = byID[*o.RelatedTransactionID]
		}
	}
	return nil
}
