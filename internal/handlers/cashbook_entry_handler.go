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

// CashbookEntryHandler handles cashbook receipts and payments.
type CashbookEntryHandler struct {
	cashbookService services.CashbookEntryServicer
	auditService    services.AuditServicer
}

// NewCashbookEntryHandler creates a new CashbookEntryHandler.
func NewCashbookEntryHandler(cashbookService services.CashbookEntryServicer, auditService services.AuditServicer) *CashbookEntryHandler {
	return &CashbookEntryHandler{cashbookService: cashbookService, auditService: auditService}
}

// CashbookEntryRequest represents the request payload for a cashbook entry.
type CashbookEntryRequest struct {
	EntryDate     *string                  `json:"entry_date" example:"2024-01-10"`
	Particulars   string                   `json:"particulars" binding:"required,max=500"`
	EntryType     models.CashbookEntryType `json:"entry_type" binding:"required,cashbook_entry_type" enums:"RECEIPT,PAYMENT"`
	Amount        decimal.Decimal          `json:"amount" swaggertype:"string" example:"1200.00" binding:"gt=0"`
	VoucherNumber string                   `json:"voucher_number" binding:"max=100"`
}

// UpdateCashbookEntryRequest represents the request payload for updating a cashbook entry.
type UpdateCashbookEntryRequest struct {
	EntryDate     *string                   `json:"entry_date"`
	Particulars   *string                   `json:"particulars" binding:"omitempty,min=1,max=500"`
	EntryType     *models.CashbookEntryType `json:"entry_type" binding:"omitempty,cashbook_entry_type"`
	Amount        *decimal.Decimal          `json:"amount" swaggertype:"string"`
	VoucherNumber *string                   `json:"voucher_number" binding:"omitempty,max=100"`
}

// CreateCashbookEntry handles recording a cashbook entry.
// @Summary     Create a cashbook entry
// @Tags        cashbook
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CashbookEntryRequest true "Cashbook entry"
// @Success     201 {object} models.CashbookEntry "Entry created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cashbook-entries [post]
func (h *CashbookEntryHandler) CreateCashbookEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CashbookEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	date, err := parseOptionalDate(req.EntryDate, "entry_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.cashbookService.CreateCashbookEntry(c.Request.Context(), services.CashbookEntryInput{
		EntryDate:     date,
		Particulars:   req.Particulars,
		EntryType:     req.EntryType,
		Amount:        req.Amount,
		VoucherNumber: req.VoucherNumber,
		CreatedBy:     userID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "CREATE_CASHBOOK_ENTRY",
		ResourceType: "cashbook_entry",
		ResourceID:   entry.ID,
		IPAddress:    c.ClientIP(),
		Changes:      map[string]interface{}{"entry_type": entry.EntryType, "amount": entry.Amount.StringFixed(2)},
	})

	c.JSON(http.StatusCreated, entry)
}

// ListCashbookEntries handles listing cashbook entries.
// @Summary     List cashbook entries
// @Tags        cashbook
// @Produce     json
// @Security    BearerAuth
// @Param       entry_type query string false "RECEIPT or PAYMENT"
// @Param       search     query string false "Search particulars or voucher number"
// @Param       ordering   query string false "entry_date, amount or created_at; prefix - for descending"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.CashbookEntry] "Paginated entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cashbook-entries [get]
func (h *CashbookEntryHandler) ListCashbookEntries(c *gin.Context) {
	params, err := bindListParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var entryType *models.CashbookEntryType
	if v := strings.TrimSpace(c.Query("entry_type")); v != "" {
		t := models.CashbookEntryType(strings.ToUpper(v))
		if t != models.CashbookEntryReceipt && t != models.CashbookEntryPayment {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "entry_type must be RECEIPT or PAYMENT"))
			return
		}
		entryType = &t
	}

	result, err := h.cashbookService.ListCashbookEntries(c.Request.Context(), entryType, params)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCashbookEntry handles the retrieval of one cashbook entry.
// @Summary     Get cashbook entry
// @Tags        cashbook
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Cashbook entry ID"
// @Success     200 {object} models.CashbookEntry "Entry details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cashbook-entries/{id} [get]
func (h *CashbookEntryHandler) GetCashbookEntry(c *gin.Context) {
	entry, err := h.cashbookService.GetCashbookEntryByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// UpdateCashbookEntry handles updating a cashbook entry.
// @Summary     Update cashbook entry
// @Tags        cashbook
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                     true "Cashbook entry ID"
// @Param       request body UpdateCashbookEntryRequest true "Fields to update"
// @Success     200 {object} models.CashbookEntry "Entry updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cashbook-entries/{id} [put]
func (h *CashbookEntryHandler) UpdateCashbookEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCashbookEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	date, err := parseOptionalDatePtr(req.EntryDate, "entry_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.cashbookService.UpdateCashbookEntry(c.Request.Context(), c.Param("id"), services.UpdateCashbookEntryInput{
		EntryDate:     date,
		Particulars:   req.Particulars,
		EntryType:     req.EntryType,
		Amount:        req.Amount,
		VoucherNumber: req.VoucherNumber,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "UPDATE_CASHBOOK_ENTRY",
		ResourceType: "cashbook_entry",
		ResourceID:   entry.ID,
		IPAddress:    c.ClientIP(),
	})

	c.JSON(http.StatusOK, entry)
}

// DeleteCashbookEntry handles deleting a cashbook entry.
// @Summary     Delete cashbook entry
// @Tags        cashbook
// @Security    BearerAuth
// @Param       id path string true "Cashbook entry ID"
// @Success     204 "Entry deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cashbook-entries/{id} [delete]
func (h *CashbookEntryHandler) DeleteCashbookEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.cashbookService.DeleteCashbookEntry(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "DELETE_CASHBOOK_ENTRY",
		ResourceType: "cashbook_entry",
		ResourceID:   id,
		IPAddress:    c.ClientIP(),
	})

	c.Status(http.StatusNoContent)
}
