package admin

import (
	"strings"

	"github.com/fleetdesk/internal/http/response"
	"github.com/fleetdesk/internal/logger"
	"github.com/fleetdesk/internal/repository"
	"github.com/fleetdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAgentYield 按已存协议测算合伙人当月收益
func (h *Handler) GetAgentYield(c *gin.Context) {
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}
	report, err := h.EquityService.YieldForAgent(c.Request.Context(), agentID, c.Query("pool"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, report)
}

// SimulateYield 按临时协议测算收益
func (h *Handler) SimulateYield(c *gin.Context) {
	var req service.YieldSimulationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	projection, err := h.EquityService.Simulate(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, projection)
}

// UpdateAgreement 修改合伙人协议条款
func (h *Handler) UpdateAgreement(c *gin.Context) {
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	var req service.AgreementTermsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	agent, err := h.EquityService.UpdateAgreementTerms(c.Request.Context(), agentID, req, service.AgreementChangeMeta{
		OperatorID: operatorID,
		RequestID:  currentRequestID(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, agent)
}

// TransitionAgreementStatus 流转合伙人协议状态
func (h *Handler) TransitionAgreementStatus(c *gin.Context) {
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	var req service.AgreementStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	agent, err := h.EquityService.TransitionStatus(c.Request.Context(), agentID, req, service.AgreementChangeMeta{
		OperatorID: operatorID,
		RequestID:  currentRequestID(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, agent)
}

// EnqueueSettlement 派发月度收益结算
func (h *Handler) EnqueueSettlement(c *gin.Context) {
	var req service.SettlementInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	req.AgentID = strings.TrimSpace(req.AgentID)

	dispatch, err := h.EquityService.EnqueueSettlement(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	logger.Infow("admin_yield_settlement_dispatched",
		"operator_id", currentOperatorID(c),
		"agent_id", req.AgentID,
		"year", dispatch.Year,
		"month", dispatch.Month,
		"queued", dispatch.Queued,
		"request_id", currentRequestID(c),
	)
	response.Success(c, dispatch)
}

// ListYieldReserve 合伙人收益储备台账
func (h *Handler) ListYieldReserve(c *gin.Context) {
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}
	page, pageSize := parsePageQuery(c)
	entries, total, err := h.EquityService.ListReserve(agentID, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, entries, buildPagination(page, pageSize, total))
}

// ListAgreementAuditLogs 协议变更审计日志
func (h *Handler) ListAgreementAuditLogs(c *gin.Context) {
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
	filter := repository.AgreementAuditLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		AgentID:     strings.TrimSpace(c.Query("agent_id")),
		OperatorID:  strings.TrimSpace(c.Query("operator_id")),
		Action:      strings.TrimSpace(c.Query("action")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	}
	logs, total, err := h.EquityService.ListAuditLogs(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, logs, buildPagination(page, pageSize, total))
}
