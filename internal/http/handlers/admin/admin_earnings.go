package admin

import (
	"strings"
	"time"

	"github.com/fleetdesk/internal/http/response"
	"github.com/fleetdesk/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAgentPayout 获取业务员月度提成明细
func (h *Handler) GetAgentPayout(c *gin.Context) {
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}
	year, month, ok := parsePeriodQuery(c, h.engineNow())
	if !ok {
		return
	}

	report, err := h.EarningsService.ComputePayout(c.Request.Context(), agentID, year, month)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, report)
}

// GetAgentRank 获取业务员晋升进度
func (h *Handler) GetAgentRank(c *gin.Context) {
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}
	progress, err := h.EarningsService.ComputeRankProgress(c.Request.Context(), agentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, progress)
}

// GetAgentNetwork 获取业务员团队视图
func (h *Handler) GetAgentNetwork(c *gin.Context) {
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}
	view, err := h.EarningsService.GetNetwork(c.Request.Context(), agentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// ListAgents 业务员列表
func (h *Handler) ListAgents(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	filter := repository.AgentListFilter{
		Page:            page,
		PageSize:        pageSize,
		Role:            strings.TrimSpace(c.Query("role")),
		ExperienceLevel: strings.TrimSpace(c.Query("experience_level")),
		ParentAgentID:   strings.TrimSpace(c.Query("parent_agent_id")),
		Keyword:         strings.TrimSpace(c.Query("keyword")),
	}
	agents, total, err := h.EarningsService.ListAgents(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, agents, buildPagination(page, pageSize, total))
}

// ListPayments 回款流水列表
func (h *Handler) ListPayments(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	paidFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("paid_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	paidTo, err := parseTimeNullable(strings.TrimSpace(c.Query("paid_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	filter := repository.PaymentListFilter{
		Page:     page,
		PageSize: pageSize,
		ClientID: strings.TrimSpace(c.Query("client_id")),
		AgentID:  strings.TrimSpace(c.Query("agent_id")),
		PaidFrom: paidFrom,
		PaidTo:   paidTo,
	}
	payments, total, err := h.EarningsService.ListPayments(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, payments, buildPagination(page, pageSize, total))
}

func (h *Handler) engineNow() time.Time {
	if h == nil || h.Container == nil || h.Config == nil {
		return time.Now().UTC()
	}
	return time.Now().In(h.Config.Engine.Location())
}
