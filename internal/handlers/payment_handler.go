package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "collegebank/internal/errors"
	"collegebank/internal/models"
	"collegebank/internal/services"
)

// PaymentHandler handles outgoing payment requests.
type PaymentHandler struct {
	paymentService services.PaymentServicer
	auditService   services.AuditServicer
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService services.PaymentServicer, auditService services.AuditServicer) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, auditService: auditService}
}

// PaymentTransactionRequest is the nested transaction of a payment. The
// type, when sent, is ignored: payments always debit.
type PaymentTransactionRequest struct {
	AccountID       string                 `json:"account_id" binding:"required"`
	Amount          decimal.Decimal        `json:"amount" swaggertype:"string" example:"200.00" binding:"gt=0"`
	Description     string                 `json:"description" binding:"max=500"`
	TransactionDate *string                `json:"transaction_date" example:"2024-01-15"`
	TransactionType models.TransactionType `json:"transaction_type,omitempty"`
}

// CreatePaymentRequest represents the request payload for an outgoing payment
type CreatePaymentRequest struct {
	Transaction     *PaymentTransactionRequest `json:"transaction"`
	Payee           string                     `json:"payee" binding:"max=200"`
	Purpose         string                     `json:"purpose" binding:"max=500"`
	PaymentMethod   string                     `json:"payment_method" binding:"max=50"`
	ReferenceNumber string                     `json:"reference_number" binding:"max=100"`
}

// CreatePayment handles creating a payment and its debit
// @Summary     Create a payment
// @Description Record an outgoing payment; its DEBIT transaction is created in the same database transaction
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key header string               false "Replay protection key"
// @Param       request         body   CreatePaymentRequest true  "Payment details"
// @Success     201 {object} models.Payment "Payment created"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     409 {object} ErrorResponse "Idempotency conflict"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	if req.Transaction == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction details are required"))
		return
	}

	date, err := parseOptionalDate(req.Transaction.TransactionDate, "transaction_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), services.CreatePaymentInput{
		Transaction: &services.PaymentTransactionInput{
			AccountID:       req.Transaction.AccountID,
			Amount:          req.Transaction.Amount,
			Description:     req.Transaction.Description,
			TransactionDate: date,
			Type:            req.Transaction.TransactionType,
		},
		Payee:           req.Payee,
		Purpose:         req.Purpose,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
		CreatedBy:       userID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "CREATE_PAYMENT",
		ResourceType: "payment",
		ResourceID:   payment.ID,
		IPAddress:    c.ClientIP(),
		Changes:      map[string]interface{}{"payee": payment.Payee, "transaction_id": payment.TransactionID},
	})

	c.JSON(http.StatusCreated, payment)
}

// ListPayments handles listing payments
// @Summary     List payments
// @Description Paginated payments with search and ordering
// @Tags        payments
// @Produce     json
// @Security    BearerAuth
// @Param       search    query string false "Search payee, purpose or reference number"
// @Param       ordering  query string false "created_at or payee; prefix - for descending"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Payment] "Paginated payments"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	params, err := bindListParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.paymentService.ListPayments(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPayment handles the retrieval of one payment
// @Summary     Get payment
// @Description Get a payment with its transaction
// @Tags        payments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payment ID"
// @Success     200 {object} models.Payment "Payment details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPaymentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}
