package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"budgetiq/internal/logger"
	"budgetiq/internal/models"
)

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer backed by the audit_logs table.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records a ledger mutation. It runs after the mutation has committed, so
// failures are logged and swallowed rather than reported to the caller.
func (s *auditService) Log(actor, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	log := logger.Get().With(
		"actor", actor,
		"action", action,
		"resource_type", resourceType,
		"resource_id", resourceID,
	)

	entry := &models.AuditLog{
		Actor:        actor,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      encodeChanges(changes),
	}

	if err := s.db.Create(entry).Error; err != nil {
		log.Errorw("failed to create audit log entry", "error", err)
		return
	}
	log.Debugw("audit entry recorded", "id", entry.ID)
}

// encodeChanges renders changes as a JSON object. Nil maps produce an empty
// column; values that cannot be encoded produce "{}".
func encodeChanges(changes map[string]interface{}) string {
	if changes == nil {
		return ""
	}
	data, err := json.Marshal(changes)
	if err != nil {
		logger.Get().Warnw("failed to marshal audit changes", "error", err)
		return "{}"
	}
	return string(data)
}
