package admin

import (
	"net/url"
	"strings"

	"github.com/fleetdesk/internal/http/response"
	"github.com/fleetdesk/internal/logger"
	"github.com/fleetdesk/internal/models"
	"github.com/fleetdesk/internal/service"

	"github.com/gin-gonic/gin"
)

type authzRolePayload struct {
	Role string `json:"role" binding:"required"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetOperatorRolesPayload struct {
	Roles []string `json:"roles"`
}

// GetAuthzMe 获取当前操作员权限快照
func (h *Handler) GetAuthzMe(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	role := currentOperatorRole(c)

	roles, err := h.AuthzService.GetOperatorRoles(operatorID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	policies, err := h.AuthzService.GetOperatorPolicies(operatorID, role)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	response.Success(c, gin.H{
		"operator_id": operatorID,
		"agent_role":  role,
		"roles":       roles,
		"policies":    policies,
	})
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, roles)
}

// CreateAuthzRole 创建角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req authzRolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}

	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{
		Action: "role_create",
		Role:   role,
	})
	logger.Infow("admin_authz_role_created",
		"operator_id", currentOperatorID(c),
		"role", role,
		"request_id", currentRequestID(c),
	)
	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole 删除角色
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	if role == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondError(c, response.CodeBadRequest, "error.role_builtin", err)
		return
	}

	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{
		Action: "role_delete",
		Role:   role,
	})
	logger.Infow("admin_authz_role_deleted",
		"operator_id", currentOperatorID(c),
		"role", role,
		"request_id", currentRequestID(c),
	)
	response.Success(c, gin.H{"deleted": true})
}

// GetAuthzRolePolicies 获取角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	if role == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{
		Action: "policy_grant",
		Role:   req.Role,
		Object: req.Object,
		Method: req.Action,
	})
	logger.Infow("admin_authz_policy_granted",
		"operator_id", currentOperatorID(c),
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
		"request_id", currentRequestID(c),
	)
	response.Success(c, gin.H{"granted": true})
}

// RevokeAuthzPolicy 回收角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{
		Action: "policy_revoke",
		Role:   req.Role,
		Object: req.Object,
		Method: req.Action,
	})
	logger.Infow("admin_authz_policy_revoked",
		"operator_id", currentOperatorID(c),
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
		"request_id", currentRequestID(c),
	)
	response.Success(c, gin.H{"revoked": true})
}

// GetAuthzOperatorRoles 获取操作员附加角色
func (h *Handler) GetAuthzOperatorRoles(c *gin.Context) {
	operatorID := strings.TrimSpace(c.Param("operator_id"))
	if operatorID == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	roles, err := h.AuthzService.GetOperatorRoles(operatorID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{
		"operator_id": operatorID,
		"roles":       roles,
	})
}

// SetAuthzOperatorRoles 覆盖设置操作员附加角色
func (h *Handler) SetAuthzOperatorRoles(c *gin.Context) {
	operatorID := strings.TrimSpace(c.Param("operator_id"))
	if operatorID == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req authzSetOperatorRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.SetOperatorRoles(operatorID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	roles, err := h.AuthzService.GetOperatorRoles(operatorID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{
		TargetOperatorID: operatorID,
		Action:           "operator_roles_set",
		Detail:           models.JSON{"roles": roles},
	})
	logger.Infow("admin_authz_operator_roles_updated",
		"operator_id", currentOperatorID(c),
		"target_operator_id", operatorID,
		"roles", roles,
		"request_id", currentRequestID(c),
	)
	response.Success(c, gin.H{
		"operator_id": operatorID,
		"roles":       roles,
	})
}

func (h *Handler) recordAuthzAudit(c *gin.Context, input service.AuthzAuditRecordInput) {
	input.OperatorID = currentOperatorID(c)
	input.RequestID = currentRequestID(c)
	if err := h.AuthzAuditService.Record(input); err != nil {
		logger.Warnw("admin_authz_audit_record_failed",
			"operator_id", input.OperatorID,
			"action", input.Action,
			"request_id", input.RequestID,
			"error", err,
		)
	}
}

func decodeRoleParam(value string) string {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(decoded)
}
