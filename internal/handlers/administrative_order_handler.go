package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"collegebank/internal/services"
)

// AdministrativeOrderHandler handles administrative order requests.
type AdministrativeOrderHandler struct {
	orderService services.AdministrativeOrderServicer
	auditService services.AuditServicer
}

// NewAdministrativeOrderHandler creates a new AdministrativeOrderHandler.
func NewAdministrativeOrderHandler(orderService services.AdministrativeOrderServicer, auditService services.AuditServicer) *AdministrativeOrderHandler {
	return &AdministrativeOrderHandler{orderService: orderService, auditService: auditService}
}

// CreateOrderRequest represents the request payload for an administrative
// order. related_transaction_id may be null or omitted.
type CreateOrderRequest struct {
	OrderNumber          string  `json:"order_number" binding:"required,max=100"`
	Title                string  `json:"title" binding:"required,max=300"`
	Description          string  `json:"description" binding:"max=2000"`
	IssuedBy             string  `json:"issued_by" binding:"max=200"`
	OrderDate            *string `json:"order_date" example:"2024-01-09"`
	RelatedTransactionID *string `json:"related_transaction_id"`
}

// UpdateOrderRequest represents the request payload for updating an order.
// An empty related_transaction_id removes the link.
type UpdateOrderRequest struct {
	OrderNumber          *string `json:"order_number" binding:"omitempty,min=1,max=100"`
	Title                *string `json:"title" binding:"omitempty,min=1,max=300"`
	Description          *string `json:"description" binding:"omitempty,max=2000"`
	IssuedBy             *string `json:"issued_by" binding:"omitempty,max=200"`
	OrderDate            *string `json:"order_date"`
	RelatedTransactionID *string `json:"related_transaction_id"`
}

// CreateOrder handles creating an administrative order.
// @Summary     Create an administrative order
// @Description Create an order, optionally linked to the transaction it authorised
// @Tags        administrative-orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateOrderRequest true "Order details"
// @Success     201 {object} models.AdministrativeOrder "Order created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Related transaction not found"
// @Failure     409 {object} ErrorResponse "Duplicate order number"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /administrative-orders [post]
func (h *AdministrativeOrderHandler) CreateOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	date, err := parseOptionalDate(req.OrderDate, "order_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), services.CreateOrderInput{
		OrderNumber:          req.OrderNumber,
		Title:                req.Title,
		Description:          req.Description,
		IssuedBy:             req.IssuedBy,
		OrderDate:            date,
		RelatedTransactionID: req.RelatedTransactionID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "CREATE_ORDER",
		ResourceType: "administrative_order",
		ResourceID:   order.ID,
		IPAddress:    c.ClientIP(),
		Changes:      map[string]interface{}{"order_number": order.OrderNumber, "related_transaction_id": order.RelatedTransactionID},
	})

	c.JSON(http.StatusCreated, order)
}

// ListOrders handles listing administrative orders.
// @Summary     List administrative orders
// @Tags        administrative-orders
// @Produce     json
// @Security    BearerAuth
// @Param       search    query string false "Search order number, title or issuer"
// @Param       ordering  query string false "order_date, order_number or created_at; prefix - for descending"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AdministrativeOrder] "Paginated orders"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /administrative-orders [get]
func (h *AdministrativeOrderHandler) ListOrders(c *gin.Context) {
	params, err := bindListParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrder handles the retrieval of one administrative order.
// @Summary     Get administrative order
// @Description Get an order; the related transaction is included when it still exists
// @Tags        administrative-orders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Order ID"
// @Success     200 {object} models.AdministrativeOrder "Order details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /administrative-orders/{id} [get]
func (h *AdministrativeOrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrder handles updating an administrative order.
// @Summary     Update administrative order
// @Tags        administrative-orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Order ID"
// @Param       request body UpdateOrderRequest true "Fields to update"
// @Success     200 {object} models.AdministrativeOrder "Order updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Order or related transaction not found"
// @Failure     409 {object} ErrorResponse "Duplicate order number"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /administrative-orders/{id} [put]
func (h *AdministrativeOrderHandler) UpdateOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	date, err := parseOptionalDatePtr(req.OrderDate, "order_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("id"), services.UpdateOrderInput{
		OrderNumber:          req.OrderNumber,
		Title:                req.Title,
		Description:          req.Description,
		IssuedBy:             req.IssuedBy,
		OrderDate:            date,
		RelatedTransactionID: req.RelatedTransactionID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "UPDATE_ORDER",
		ResourceType: "administrative_order",
		ResourceID:   order.ID,
		IPAddress:    c.ClientIP(),
	})

	c.JSON(http.StatusOK, order)
}

// DeleteOrder handles deleting an administrative order. The linked
// transaction is left untouched.
// @Summary     Delete administrative order
// @Tags        administrative-orders
// @Security    BearerAuth
// @Param       id path string true "Order ID"
// @Success     204 "Order deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /administrative-orders/{id} [delete]
func (h *AdministrativeOrderHandler) DeleteOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.orderService.DeleteOrder(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:       userID,
		Action:       "DELETE_ORDER",
		ResourceType: "administrative_order",
		ResourceID:   id,
		IPAddress:    c.ClientIP(),
	})

	c.Status(http.StatusNoContent)
}
