package admin

import (
	"strconv"
	"strings"

	"github.com/fleetdesk/internal/http/response"
	"github.com/fleetdesk/internal/repository"
	"github.com/fleetdesk/internal/service"

	"github.com/gin-gonic/gin"
)

type claimPayoutRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required"`
}

// CheckClaim 检查当月是否可领取提成
func (h *Handler) CheckClaim(c *gin.Context) {
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}
	year, month, ok := parsePeriodQuery(c, h.engineNow())
	if !ok {
		return
	}
	result, err := h.ClaimService.TryClaim(c.Request.Context(), agentID, year, month)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// ClaimPayout 领取月度提成
func (h *Handler) ClaimPayout(c *gin.Context) {
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	var req claimPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	outcome, err := h.ClaimService.ClaimPayout(c.Request.Context(), service.ClaimInput{
		AgentID:    agentID,
		Year:       req.Year,
		Month:      req.Month,
		OperatorID: operatorID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("admin_payout_claimed",
		"claim_id", outcome.ClaimID,
		"agent_id", agentID,
		"operator_id", operatorID,
	)
	response.Success(c, outcome)
}

// GetClaim 领取记录详情
func (h *Handler) GetClaim(c *gin.Context) {
	claimID := strings.TrimSpace(c.Param("claim_id"))
	if claimID == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	record, err := h.ClaimService.GetClaim(c.Request.Context(), claimID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, record)
}

// ListClaims 领取记录列表
func (h *Handler) ListClaims(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	year, _ := strconv.Atoi(strings.TrimSpace(c.Query("year")))
	month, err := parseIntNullable(c.Query("month"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var monthIndex *int
	if month != nil {
		index := *month - 1
		monthIndex = &index
	}
	filter := repository.ClaimListFilter{
		Page:       page,
		PageSize:   pageSize,
		AgentID:    strings.TrimSpace(c.Query("agent_id")),
		Year:       year,
		MonthIndex: monthIndex,
		OperatorID: strings.TrimSpace(c.Query("operator_id")),
	}
	records, total, err := h.ClaimService.ListClaims(c.Request.Context(), filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, records, buildPagination(page, pageSize, total))
}
