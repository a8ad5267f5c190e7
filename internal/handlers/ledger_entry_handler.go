package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"collegebank/internal/services"
)

// LedgerEntryHandler handles manually posted ledger lines.
type LedgerEntryHandler struct {
	ledgerService services.LedgerEntryServicer
	auditService  services.AuditServicer
}

// NewLedgerEntryHandler creates a new LedgerEntryHandler.
func NewLedgerEntryHandler(ledgerService services.LedgerEntryServicer, auditService services.AuditServicer) *LedgerEntryHandler {
	return &LedgerEntryHandler{ledgerService: ledgerService, auditService: auditService}
}

// LedgerEntryRequest represents the request payload for a ledger entry.
type LedgerEntryRequest struct {
	EntryDate    *string         `json:"entry_date" example:"2024-01-10"`
	Particulars  string          `json:"particulars" binding:"required,max=500"`
	Reference    string          `json:"reference" binding:"max=100"`
	DebitAmount  decimal.Decimal `json:"debit_amount" swaggertype:"string" example:"0.00" binding:"gte=0"`
	CreditAmount decimal.Decimal `json:"credit_amount" swaggertype:"string" example:"250.00" binding:"gte=0"`
}

// UpdateLedgerEntryRequest represents the request payload for updating a ledger entry.
type UpdateLedgerEntryRequest struct {
	EntryDate    *string          `json:"entry_date"`
	Particulars  *string          `json:"particulars" binding:"omitempty,min=1,max=500"`
	Reference    *string          `json:"reference" binding:"omitempty,max=100"`
	DebitAmount  *decimal.Decimal `json:"debit_amount" swaggertype:"string"`
	CreditAmount *decimal.Decimal `json:"credit_amount" swaggertype:"string"`
}

// CreateLedgerEntry handles posting a ledger entry.
// @Summary     Create a ledger entry
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body LedgerEntryRequest true "Ledger entry"
// @Success     201 {object} models.LedgerEntry "Entry created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledger-entries [post]
func (h *LedgerEntryHandler) CreateLedgerEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	date, err := parseOptionalDate(req.EntryDate, "entry_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.ledgerService.CreateLedgerEntry(c.Request.Context(), services.LedgerEntryInput{
		EntryDate:    date,
		Particulars:  req.Particulars,
		Reference:    req.Reference,
		DebitAmount:  req.DebitAmount,
		CreditAmount: req.CreditAmount,
		CreatedBy:    userID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "CREATE_LEDGER_ENTRY",
		ResourceType: "ledger_entry",
		ResourceID:   entry.ID,
		IPAddress:    c.ClientIP(),
	})

	c.JSON(http.StatusCreated, entry)
}

// ListLedgerEntries handles listing ledger entries.
// @Summary     List ledger entries
// @Tags        ledger
// @Produce     json
// @Security    BearerAuth
// @Param       search    query string false "Search particulars or reference"
// @Param       ordering  query string false "entry_date, debit_amount, credit_amount or created_at; prefix - for descending"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.LedgerEntry] "Paginated entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledger-entries [get]
func (h *LedgerEntryHandler) ListLedgerEntries(c *gin.Context) {
	params, err := bindListParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.ledgerService.ListLedgerEntries(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLedgerEntry handles the retrieval of one ledger entry.
// @Summary     Get ledger entry
// @Tags        ledger
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Ledger entry ID"
// @Success     200 {object} models.LedgerEntry "Entry details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledger-entries/{id} [get]
func (h *LedgerEntryHandler) GetLedgerEntry(c *gin.Context) {
	entry, err := h.ledgerService.GetLedgerEntryByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// UpdateLedgerEntry handles updating a ledger entry.
// @Summary     Update ledger entry
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Ledger entry ID"
// @Param       request body UpdateLedgerEntryRequest true "Fields to update"
// @Success     200 {object} models.LedgerEntry "Entry updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledger-entries/{id} [put]
func (h *LedgerEntryHandler) UpdateLedgerEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateLedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	date, err := parseOptionalDatePtr(req.EntryDate, "entry_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.ledgerService.UpdateLedgerEntry(c.Request.Context(), c.Param("id"), services.UpdateLedgerEntryInput{
		EntryDate:    date,
		Particulars:  req.Particulars,
		Reference:    req.Reference,
		DebitAmount:  req.DebitAmount,
		CreditAmount: req.CreditAmount,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "UPDATE_LEDGER_ENTRY",
		ResourceType: "ledger_entry",
		ResourceID:   entry.ID,
		IPAddress:    c.ClientIP(),
	})

	c.JSON(http.StatusOK, entry)
}

// DeleteLedgerEntry handles deleting a ledger entry.
// @Summary     Delete ledger entry
// @Tags        ledger
// @Security    BearerAuth
// @Param       id path string true "Ledger entry ID"
// @Success     204 "Entry deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledger-entries/{id} [delete]
func (h *LedgerEntryHandler) DeleteLedgerEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.ledgerService.DeleteLedgerEntry(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "DELETE_LEDGER_ENTRY",
		ResourceType: "ledger_entry",
		ResourceID:   id,
		IPAddress:    c.ClientIP(),
	})

	c.Status(http.StatusNoContent)
}
