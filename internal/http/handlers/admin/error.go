package admin

import (
	"errors"

	handlershared "github.com/fleetdesk/internal/http/handlers/shared"
	"github.com/fleetdesk/internal/http/response"
	"github.com/fleetdesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// serviceErrorMapping 业务错误到响应码与消息 key 的映射，按顺序匹配
var serviceErrorMapping = []struct {
	err  error
	code int
	key  string
}{
	{service.ErrAgentNotFound, response.CodeNotFound, "error.agent_not_found"},
	{service.ErrNotFound, response.CodeNotFound, "error.not_found"},
	{service.ErrNotPartner, response.CodeBadRequest, "error.agent_not_partner"},
	{service.ErrPeriodInvalid, response.CodeBadRequest, "error.period_invalid"},
	{service.ErrAgreementFrozen, response.CodeConflict, "error.agreement_frozen"},
	{service.ErrAgreementInvalid, response.CodeBadRequest, "error.agreement_invalid"},
	{service.ErrAgreementStatusInvalid, response.CodeConflict, "error.agreement_status_invalid"},
	{service.ErrYieldInputInvalid, response.CodeBadRequest, "error.yield_input_invalid"},
	{service.ErrSettlementInvalid, response.CodeBadRequest, "error.settlement_invalid"},
	{service.ErrSettlementOutOfOrder, response.CodeConflict, "error.settlement_out_of_order"},
	{service.ErrClaimWindowInvalid, response.CodeBadRequest, "error.claim_window_invalid"},
	{service.ErrClaimDuplicate, response.CodeConflict, "error.claim_duplicate"},
	{service.ErrClaimInProgress, response.CodeConflict, "error.claim_in_progress"},
	{service.ErrQueueUnavailable, response.CodeInternal, "error.queue_unavailable"},
}

// respondServiceError 将业务错误转换为统一响应
func respondServiceError(c *gin.Context, err error) {
	for _, item := range serviceErrorMapping {
		if errors.Is(err, item.err) {
			respondError(c, item.code, item.key, err)
			return
		}
	}
	respondError(c, response.CodeInternal, "error.internal", err)
}
