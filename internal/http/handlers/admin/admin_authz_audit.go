package admin

import (
	"strings"

	"github.com/fleetdesk/internal/http/response"
	"github.com/fleetdesk/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAuthzAuditLogs 获取权限审计日志列表
func (h *Handler) ListAuthzAuditLogs(c *gin.Context) {
	page, pageSize := parsePageQuery(c)

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	items, total, err := h.AuthzAuditService.ListForAdmin(repository.AuthzAuditLogListFilter{
		Page:             page,
		PageSize:         pageSize,
		OperatorID:       strings.TrimSpace(c.Query("operator_id")),
		TargetOperatorID: strings.TrimSpace(c.Query("target_operator_id")),
		Action:           strings.TrimSpace(c.Query("action")),
		Role:             strings.TrimSpace(c.Query("role")),
		Object:           strings.TrimSpace(c.Query("object")),
		Method:           strings.TrimSpace(c.Query("method")),
		CreatedFrom:      createdFrom,
		CreatedTo:        createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, items, buildPagination(page, pageSize, total))
}
