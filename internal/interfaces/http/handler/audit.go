package handler

import (
	auditapp "github.com/Faiz-abdurrachman/SIDESA/internal/application/audit"
	"github.com/gin-gonic/gin"
)

// AuditHandler serves the audit trail
type AuditHandler struct {
	BaseHandler
	auditService *auditapp.Service
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService *auditapp.Service) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List handles GET /audit-logs
func (h *AuditHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var filter auditapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if !h.queryUUID(c, "record_id", &filter.RecordID) || !h.queryUUID(c, "user_id", &filter.ActorID) {
		return
	}

	records, total, err := h.auditService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, records, total, filter.Page, filter.PageSize)
}
