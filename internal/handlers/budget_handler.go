package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"collegebank/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	FiscalYear      string          `json:"fiscal_year" binding:"required,max=20" example:"2024-25"`
	Department      string          `json:"department" binding:"max=200"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount" swaggertype:"string" example:"150000.00" binding:"gte=0"`
	Description     string          `json:"description" binding:"max=1000"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	Name            *string          `json:"name" binding:"omitempty,min=1,max=200"`
	FiscalYear      *string          `json:"fiscal_year" binding:"omitempty,min=1,max=20"`
	Department      *string          `json:"department" binding:"omitempty,max=200"`
	AllocatedAmount *decimal.Decimal `json:"allocated_amount" swaggertype:"string"`
	Description     *string          `json:"description" binding:"omitempty,max=1000"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a departmental budget for a fiscal year
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), services.BudgetInput{
		Name:            req.Name,
		FiscalYear:      req.FiscalYear,
		Department:      req.Department,
		AllocatedAmount: req.AllocatedAmount,
		Description:     req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "CREATE_BUDGET",
		ResourceType: "budget",
		ResourceID:   budget.ID,
		IPAddress:    c.ClientIP(),
		Changes:      map[string]interface{}{"name": budget.Name, "fiscal_year": budget.FiscalYear},
	})

	c.JSON(http.StatusCreated, budget)
}

// ListBudgets handles listing budgets.
// @Summary     List budgets
// @Description Paginated budgets, optionally for one fiscal year
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       fiscal_year query string false "Filter by fiscal year"
// @Param       search      query string false "Search name, department or description"
// @Param       ordering    query string false "name, fiscal_year, allocated_amount or created_at; prefix - for descending"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	params, err := bindListParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.budgetService.ListBudgets(c.Request.Context(), c.Query("fiscal_year"), params)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles the retrieval of one budget.
// @Summary     Get budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} models.Budget "Budget details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	budget, err := h.budgetService.GetBudgetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budget)
}

// UpdateBudget handles updating a budget.
// @Summary     Update budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Fields to update"
// @Success     200 {object} models.Budget "Budget updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), c.Param("id"), services.UpdateBudgetInput{
		Name:            req.Name,
		FiscalYear:      req.FiscalYear,
		Department:      req.Department,
		AllocatedAmount: req.AllocatedAmount,
		Description:     req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "UPDATE_BUDGET",
		ResourceType: "budget",
		ResourceID:   budget.ID,
		IPAddress:    c.ClientIP(),
	})

	c.JSON(http.StatusOK, budget)
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Tags        budgets
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     204 "Budget deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.budgetService.DeleteBudget(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "DELETE_BUDGET",
		ResourceType: "budget",
		ResourceID:   id,
		IPAddress:    c.ClientIP(),
	})

	c.Status(http.StatusNoContent)
}
