package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fleetdesk/internal/logger"
	"github.com/fleetdesk/internal/provider"
	"github.com/fleetdesk/internal/queue"
	"github.com/fleetdesk/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskYieldSettlement, c.handleYieldSettlement)
	mux.HandleFunc(queue.TaskPayoutClaimRecorded, c.handlePayoutClaimRecorded)
}

func (c *Consumer) handleYieldSettlement(ctx context.Context, task *asynq.Task) (err error) {
	if c == nil || task == nil {
		logger.Debugw("worker_yield_settlement_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	defer func() { c.recordTask(queue.TaskYieldSettlement, err) }()

	var payload queue.YieldSettlementPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_yield_settlement_unmarshal_failed", "error", err)
		return errors.Join(err, asynq.SkipRetry)
	}
	if c.EquityService == nil {
		logger.Warnw("worker_yield_settlement_skip_service_nil", "agent_id", payload.AgentID)
		return nil
	}

	started := time.Now()
	entries, err := c.EquityService.SettleMonthlyYield(ctx, service.SettlementInput{
		AgentID:     payload.AgentID,
		Year:        payload.Year,
		Month:       payload.Month,
		RevenuePool: payload.RevenuePool,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSettlementInvalid),
			errors.Is(err, service.ErrSettlementOutOfOrder),
			errors.Is(err, service.ErrAgentNotFound),
			errors.Is(err, service.ErrNotPartner):
			logger.Warnw("worker_yield_settlement_skip_invalid",
				"agent_id", payload.AgentID,
				"year", payload.Year,
				"month", payload.Month,
				"error", err,
			)
			return nil
		default:
			logger.Warnw("worker_yield_settlement_failed",
				"agent_id", payload.AgentID,
				"year", payload.Year,
				"month", payload.Month,
				"error", err,
			)
			return err
		}
	}
	logger.Infow("worker_yield_settlement_done",
		"agent_id", payload.AgentID,
		"year", payload.Year,
		"month", payload.Month,
		"entries", len(entries),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

func (c *Consumer) handlePayoutClaimRecorded(_ context.Context, task *asynq.Task) (err error) {
	if c == nil || task == nil {
		logger.Debugw("worker_payout_claim_recorded_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	defer func() { c.recordTask(queue.TaskPayoutClaimRecorded, err) }()

	var payload queue.PayoutClaimRecordedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payout_claim_recorded_unmarshal_failed", "error", err)
		return errors.Join(err, asynq.SkipRetry)
	}
	if payload.ClaimID == "" {
		logger.Debugw("worker_payout_claim_recorded_skip_invalid_payload", "agent_id", payload.AgentID)
		return nil
	}
	// 通知投递不在本服务范围内，这里只留存审计事件
	logger.Infow("payout_claimed",
		"claim_id", payload.ClaimID,
		"agent_id", payload.AgentID,
		"year", payload.Year,
		"month", payload.MonthIndex+1,
		"total_payout", payload.TotalPayout,
		"operator_id", payload.OperatorID,
	)
	return nil
}

func (c *Consumer) recordTask(taskType string, err error) {
	if c == nil || c.Container == nil {
		return
	}
	c.Metrics.RecordTask(taskType, err)
}
