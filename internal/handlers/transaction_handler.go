package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "collegebank/internal/errors"
	"collegebank/internal/models"
	"collegebank/internal/services"
)

// TransactionHandler handles transaction and statement requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	statementService   services.StatementServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, statementService services.StatementServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		statementService:   statementService,
		auditService:       auditService,
	}
}

// CreateTransactionRequest represents the request payload for recording a transaction
type CreateTransactionRequest struct {
	AccountID       string                 `json:"account_id" binding:"required"`
	TransactionType models.TransactionType `json:"transaction_type" binding:"required,transaction_type" enums:"CREDIT,DEBIT"`
	Amount          decimal.Decimal        `json:"amount" swaggertype:"string" example:"500.00" binding:"gt=0"`
	Description     string                 `json:"description" binding:"max=500"`
	TransactionDate *string                `json:"transaction_date" example:"2024-01-10"`
}

// CreateTransaction handles recording a transaction
// @Summary     Record a transaction
// @Description Record a CREDIT or DEBIT against an account and update its balance
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key header string                   false "Replay protection key"
// @Param       request         body   CreateTransactionRequest true  "Transaction details"
// @Success     201 {object} models.Transaction "Transaction recorded"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     409 {object} ErrorResponse "Idempotency conflict"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	date, err := parseOptionalDate(req.TransactionDate, "transaction_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.Record(c.Request.Context(), services.RecordInput{
		AccountID:       req.AccountID,
		Type:            req.TransactionType,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: date,
		CreatedBy:       userID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "CREATE_TRANSACTION",
		ResourceType: "transaction",
		ResourceID:   transaction.ID,
		IPAddress:    c.ClientIP(),
		Changes: map[string]interface{}{
			"account_id": transaction.AccountID,
			"type":       transaction.TransactionType,
			"amount":     transaction.Amount.StringFixed(2),
		},
	})

	c.JSON(http.StatusCreated, transaction)
}

// ListTransactions handles listing transactions
// @Summary     List transactions
// @Description Paginated transactions with filters, search and ordering
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       transaction_type query string false "CREDIT or DEBIT"
// @Param       account          query string false "Account ID"
// @Param       from_date        query string false "Earliest transaction date (YYYY-MM-DD)"
// @Param       to_date          query string false "Latest transaction date (YYYY-MM-DD)"
// @Param       search           query string false "Search description or account name"
// @Param       ordering         query string false "amount, transaction_date or created_at; prefix - for descending"
// @Param       page             query int    false "Page number (default 1)"
// @Param       page_size        query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	params, err := bindListParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var filter services.TransactionFilter
	if v := strings.TrimSpace(c.Query("transaction_type")); v != "" {
		t := models.TransactionType(strings.ToUpper(v))
		if !t.Valid() {
			respondWithError(c, apperrors.ErrInvalidTransactionType)
			return
		}
		filter.Type = &t
	}
	if v := strings.TrimSpace(c.Query("account")); v != "" {
		filter.AccountID = &v
	}
	if v := c.Query("from_date"); v != "" {
		from, err := parseOptionalDate(&v, "from_date")
		if err != nil {
			respondWithError(c, err)
			return
		}
		filter.FromDate = &from
	}
	if v := c.Query("to_date"); v != "" {
		to, err := parseOptionalDate(&v, "to_date")
		if err != nil {
			respondWithError(c, err)
			return
		}
		filter.ToDate = &to
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), filter, params)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransaction handles the retrieval of one transaction
// @Summary     Get transaction
// @Description Get a transaction with its account
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// GetStatement handles account statement generation
// @Summary     Account statement
// @Description Account snapshot and its transactions dated within the period, oldest first
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       account_id query string true "Account ID"
// @Param       start_date query string true "Period start (YYYY-MM-DD)"
// @Param       end_date   query string true "Period end (YYYY-MM-DD), inclusive"
// @Success     200 {object} services.Statement "Statement"
// @Failure     400 {object} ErrorResponse "Missing or invalid parameters"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/statement [get]
func (h *TransactionHandler) GetStatement(c *gin.Context) {
	statement, err := h.statementService.GenerateStatement(c.Request.Context(), services.StatementRequest{
		AccountID: c.Query("account_id"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, statement)
}
