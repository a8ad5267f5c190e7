package services

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	apperrors "collegebank/internal/errors"
	"collegebank/internal/logger"
	"collegebank/internal/models"
	"collegebank/internal/pagination"
)

var auditOrderings = []string{"created_at", "action"}

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Record appends an event to the audit trail. The row is written outside
// any caller transaction, so a rolled back operation is never audited as
// done and a failed audit write never undoes the operation.
func (s *auditService) Record(ctx context.Context, event AuditEvent) {
	log := logger.Get().With(
		"request_id", logger.RequestID(ctx),
		"user_id", event.UserID,
		"action", event.Action,
		"resource_type", event.ResourceType,
		"resource_id", event.ResourceID,
	)

	entry := &models.AuditLog{
		UserID:       event.UserID,
		Action:       strings.ToUpper(event.Action),
		ResourceType: event.ResourceType,
		ResourceID:   event.ResourceID,
		IPAddress:    event.IPAddress,
	}
	if len(event.Changes) > 0 {
		data, err := json.Marshal(event.Changes)
		if err != nil {
			log.Warnw("audit changes not serializable", "error", err)
		} else {
			entry.Changes = string(data)
		}
	}

	if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(entry).Error; err != nil {
		log.Errorw("failed to write audit log", "error", err)
	}
}

// ListAuditLogs returns the audit trail newest first unless ordered otherwise.
func (s *auditService) ListAuditLogs(ctx context.Context, filter AuditFilter, params ListParams) (*pagination.PageResponse[models.AuditLog], error) {
	page := params.Page
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.UserID != "" {
		base = base.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		base = base.Where("action = ?", strings.ToUpper(filter.Action))
	}
	if filter.ResourceType != "" {
		base = base.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		base = base.Where("resource_id = ?", filter.ResourceID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var logs []models.AuditLog
	if err := base.Scopes(pagination.Order(params.Ordering, auditOrderings, "-created_at"), pagination.Paginate(page)).
		Find(&logs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(logs, page.Page, page.PageSize, totalItems)
	return &result, nil
}
