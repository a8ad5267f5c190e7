package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"collegebank/internal/services"
)

// AuditLogHandler serves the back-office audit trail.
type AuditLogHandler struct {
	auditService services.AuditServicer
}

// NewAuditLogHandler creates a new AuditLogHandler.
func NewAuditLogHandler(auditService services.AuditServicer) *AuditLogHandler {
	return &AuditLogHandler{auditService: auditService}
}

// ListAuditLogs handles listing audit trail entries
// @Summary     List audit logs
// @Description List who changed which back-office record, newest first
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       user_id       query string false "Filter by acting user"
// @Param       action        query string false "Filter by action, e.g. CREATE_PAYMENT"
// @Param       resource_type query string false "Filter by resource type, e.g. bank_account"
// @Param       resource_id   query string false "Filter by resource ID"
// @Param       ordering      query string false "created_at or action; prefix - for descending"
// @Param       page          query int    false "Page number (default 1)"
// @Param       page_size     query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AuditLog] "Paginated audit logs"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /audit-logs [get]
func (h *AuditLogHandler) ListAuditLogs(c *gin.Context) {
	params, err := bindListParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter := services.AuditFilter{
		UserID:       strings.TrimSpace(c.Query("user_id")),
		Action:       strings.TrimSpace(c.Query("action")),
		ResourceType: strings.TrimSpace(c.Query("resource_type")),
		ResourceID:   strings.TrimSpace(c.Query("resource_id")),
	}

	result, err := h.auditService.ListAuditLogs(c.Request.Context(), filter, params)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
