package queue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fleetdesk/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskYieldSettlement 月度收益结算任务
	TaskYieldSettlement = constants.TaskYieldSettlement
	// TaskPayoutClaimRecorded 提成领取入账通知任务
	TaskPayoutClaimRecorded = constants.TaskPayoutClaimRecorded
)

// YieldSettlementPayload 月度收益结算任务载荷
// AgentID 为空表示结算全部生效中的合伙人；Year/Month 为 0 表示处理时刻的上一个自然月
// RevenuePool 为空表示按当月回款合计作为收益池
type YieldSettlementPayload struct {
	AgentID     string `json:"agent_id,omitempty"`
	Year        int    `json:"year,omitempty"`
	Month       int    `json:"month,omitempty"`
	RevenuePool string `json:"revenue_pool,omitempty"`
}

// PayoutClaimRecordedPayload 提成领取入账通知载荷
type PayoutClaimRecordedPayload struct {
	ClaimID     string `json:"claim_id"`
	AgentID     string `json:"agent_id"`
	MonthIndex  int    `json:"month_index"`
	Year        int    `json:"year"`
	TotalPayout string `json:"total_payout"`
	OperatorID  string `json:"operator_id"`
}

// NewYieldSettlementTask 创建月度收益结算任务
func NewYieldSettlementTask(payload YieldSettlementPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskYieldSettlement, body), nil
}

// NewPayoutClaimRecordedTask 创建领取入账通知任务
func NewPayoutClaimRecordedTask(payload PayoutClaimRecordedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPayoutClaimRecorded, body), nil
}

// YieldSettlementTaskID 结算任务去重编号；未指定周期的定时任务不去重
func YieldSettlementTaskID(payload YieldSettlementPayload) string {
	if payload.Year <= 0 || payload.Month <= 0 {
		return ""
	}
	agent := strings.ToLower(strings.TrimSpace(payload.AgentID))
	if agent == "" {
		agent = "all"
	}
	return fmt.Sprintf("settlement:%s:%d-%02d", agent, payload.Year, payload.Month)
}
