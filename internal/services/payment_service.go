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

var paymentOrderings = []string{"created_at", "payee"}

// paymentService handles outgoing payments.
type paymentService struct {
	db       *gorm.DB
	recorder TransactionRecorder
}

// NewPaymentService creates a new PaymentServicer. The payment's DEBIT is
// booked through recorder.
func NewPaymentService(db *gorm.DB, recorder TransactionRecorder) PaymentServicer {
	return &paymentService{db: db, recorder: recorder}
}

// CreatePayment books a DEBIT transaction and the payment that owns it as one
// unit of work. The requested transaction type is ignored.
func (s *paymentService) CreatePayment(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	if input.Transaction == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction details are required")
	}
	input.Payee = strings.TrimSpace(input.Payee)
	if input.Payee == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payee is required")
	}

	record := RecordInput{
		AccountID:       input.Transaction.AccountID,
		Type:            models.TransactionTypeDebit,
		Amount:          input.Transaction.Amount,
		Description:     input.Transaction.Description,
		TransactionDate: input.Transaction.TransactionDate,
		CreatedBy:       input.CreatedBy,
	}
	if record.Description == "" {
		record.Description = "Payment to " + input.Payee
	}
	if _, err := validateRecordInput(record); err != nil {
		return nil, err
	}

	var payment *models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transaction, err := s.recorder.RecordWithTx(tx, record)
		if err != nil {
			return err
		}

		payment = &models.Payment{
			TransactionID:   transaction.ID,
			Payee:           input.Payee,
			Purpose:         input.Purpose,
			PaymentMethod:   input.PaymentMethod,
			ReferenceNumber: input.ReferenceNumber,
		}
		if err := tx.Omit("Transaction").Create(payment).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		payment.Transaction = transaction
		return nil
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return payment, nil
}

// GetPaymentByID retrieves a payment with its transaction and account.
func (s *paymentService) GetPaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrPaymentNotFound
	}
	var payment models.Payment
	if err := s.db.WithContext(ctx).Preload("Transaction.Account").First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &payment, nil
}

// ListPayments retrieves a paginated list of payments.
func (s *paymentService) ListPayments(ctx context.Context, params ListParams) (*pagination.PageResponse[models.Payment], error) {
	page := params.Page
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Payment{}).
		Scopes(pagination.Search(params.Search, "payee", "purpose", "reference_number"))

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payments []models.Payment
	if err := base.Preload("Transaction").
		Scopes(pagination.Order(params.Ordering, paymentOrderings, "-created_at"), pagination.Paginate(page)).
		Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(payments, page.Page, page.PageSize, totalItems)
	return &result, nil
}
