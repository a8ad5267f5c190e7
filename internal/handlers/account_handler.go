package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"collegebank/internal/services"
)

// AccountHandler handles bank account requests.
type AccountHandler struct {
	accountService services.AccountServicer
	auditService   services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, auditService: auditService}
}

// CreateAccountRequest represents the request payload for opening an account.
// A positive balance is booked as an opening CREDIT transaction.
type CreateAccountRequest struct {
	AccountName   string          `json:"account_name" binding:"required,max=200"`
	AccountNumber string          `json:"account_number" binding:"required,max=50"`
	BankName      string          `json:"bank_name" binding:"required,max=200"`
	Name          string          `json:"name" binding:"required,max=200"`
	Balance       decimal.Decimal `json:"balance" swaggertype:"string" example:"0.00" binding:"gte=0"`
}

// UpdateAccountRequest represents the request payload for updating an
// account. The balance is not accepted here.
type UpdateAccountRequest struct {
	AccountName   *string `json:"account_name" binding:"omitempty,min=1,max=200"`
	AccountNumber *string `json:"account_number" binding:"omitempty,min=1,max=50"`
	BankName      *string `json:"bank_name" binding:"omitempty,min=1,max=200"`
	Name          *string `json:"name" binding:"omitempty,min=1,max=200"`
}

// CreateAccount handles opening a bank account
// @Summary     Create a bank account
// @Description Open a bank account, optionally with an opening balance
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} models.BankAccount "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Duplicate account number"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), services.CreateAccountInput{
		AccountName:    req.AccountName,
		AccountNumber:  req.AccountNumber,
		BankName:       req.BankName,
		Name:           req.Name,
		OpeningBalance: req.Balance,
		CreatedBy:      userID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "CREATE_ACCOUNT",
		ResourceType: "bank_account",
		ResourceID:   account.ID,
		IPAddress:    c.ClientIP(),
		Changes:      map[string]interface{}{"account_number": account.AccountNumber, "opening_balance": req.Balance.StringFixed(2)},
	})

	c.JSON(http.StatusCreated, account)
}

// ListAccounts handles listing bank accounts
// @Summary     List bank accounts
// @Description Paginated bank accounts with search and ordering
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       search    query string false "Search account name, number, bank name or name"
// @Param       ordering  query string false "balance, created_at, account_name or name; prefix - for descending"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.BankAccount] "Paginated accounts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	params, err := bindListParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.accountService.ListAccounts(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccount handles the retrieval of one bank account
// @Summary     Get bank account
// @Description Get a bank account with its current balance
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} models.BankAccount "Account details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// UpdateAccount handles updating the descriptive fields of an account
// @Summary     Update bank account
// @Description Update account name, number, bank name or holder name
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Account ID"
// @Param       request body UpdateAccountRequest true "Fields to update"
// @Success     200 {object} models.BankAccount "Account updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     409 {object} ErrorResponse "Duplicate account number"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("id"), services.UpdateAccountInput{
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		Name:          req.Name,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "UPDATE_ACCOUNT",
		ResourceType: "bank_account",
		ResourceID:   account.ID,
		IPAddress:    c.ClientIP(),
	})

	c.JSON(http.StatusOK, account)
}

// DeleteAccount handles deleting an account without transactions
// @Summary     Delete bank account
// @Description Delete a bank account that has no transactions
// @Tags        accounts
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     204 "Account deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     409 {object} ErrorResponse "Account has transactions"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.accountService.DeleteAccount(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "DELETE_ACCOUNT",
		ResourceType: "bank_account",
		ResourceID:   id,
		IPAddress:    c.ClientIP(),
	})

	c.Status(http.StatusNoContent)
}
