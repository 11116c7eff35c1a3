package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fleetdesk/internal/cache"
	"github.com/fleetdesk/internal/config"
	"github.com/fleetdesk/internal/engine"
	"github.com/fleetdesk/internal/logger"
	"github.com/fleetdesk/internal/metrics"
	"github.com/fleetdesk/internal/models"
	"github.com/fleetdesk/internal/queue"
	"github.com/fleetdesk/internal/repository"

	"gorm.io/gorm"
)

// ClaimService 月度提成领取服务
type ClaimService struct {
	claimRepo   repository.ClaimRepository
	earnings    *EarningsService
	ledger      *engine.ClaimLedger
	queueClient *queue.Client
	engineCfg   config.EngineConfig
	metrics     *metrics.Metrics
	db          *gorm.DB
	now         func() time.Time
}

// NewClaimService 创建领取服务
func NewClaimService(
	db *gorm.DB,
	claimRepo repository.ClaimRepository,
	earnings *EarningsService,
	queueClient *queue.Client,
	engineCfg config.EngineConfig,
	m *metrics.Metrics,
) *ClaimService {
	return &ClaimService{
		claimRepo:   claimRepo,
		earnings:    earnings,
		ledger:      engine.NewClaimLedger(claimRepo),
		queueClient: queueClient,
		engineCfg:   engineCfg,
		metrics:     m,
		db:          db,
		now:         time.Now,
	}
}

// ClaimInput 领取请求；Month 为 1-12
type ClaimInput struct {
	AgentID    string
	Year       int
	Month      int
	OperatorID string
}

// ClaimOutcome 领取结果
type ClaimOutcome struct {
	ClaimID string              `json:"claim_id"`
	Record  *models.ClaimRecord `json:"record"`
	Report  *PayoutReport       `json:"report"`
}

// claimPeriod 将 1-12 月份转为 0 起月份并校验
func claimPeriod(agentID string, year, month int) (int, error) {
	monthIndex := month - 1
	if err := engine.ValidateClaimPeriod(agentID, monthIndex, year); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrClaimWindowInvalid, err)
	}
	return monthIndex, nil
}

// TryClaim 检查业务员当月是否可以领取
func (s *ClaimService) TryClaim(ctx context.Context, agentID string, year, month int) (*engine.ClaimResult, error) {
	monthIndex, err := claimPeriod(agentID, year, month)
	if err != nil {
		return nil, err
	}
	agentID, _, err = s.earnings.CanonicalAgentID(agentID)
	if err != nil {
		return nil, err
	}
	result, err := s.ledger.TryClaim(ctx, agentID, monthIndex, year)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ClaimPayout 领取月度提成：加锁、重算提成、落库并推送入账通知
func (s *ClaimService) ClaimPayout(ctx context.Context, input ClaimInput) (*ClaimOutcome, error) {
	monthIndex, err := claimPeriod(input.AgentID, input.Year, input.Month)
	if err != nil {
		return nil, err
	}
	agentID, found, err := s.earnings.CanonicalAgentID(input.AgentID)
	if err != nil {
		s.metrics.RecordClaim(metrics.ClaimResultError)
		return nil, err
	}
	if !found {
		s.metrics.RecordClaim(metrics.ClaimResultError)
		return nil, ErrAgentNotFound
	}
	claimID := engine.ClaimID(agentID, monthIndex, input.Year)

	lock, err := cache.AcquireClaimLock(ctx, claimID, s.engineCfg.ClaimLockTTL())
	if err != nil {
		s.metrics.RecordClaim(metrics.ClaimResultError)
		return nil, err
	}
	if lock == nil {
		s.metrics.RecordClaim(metrics.ClaimResultLocked)
		return nil, ErrClaimInProgress
	}
	defer func() {
		if releaseErr := cache.ReleaseLock(ctx, lock); releaseErr != nil {
			logger.Warnw("claim_unlock_failed", "claim_id", claimID, "error", releaseErr)
		}
	}()

	check, err := s.ledger.TryClaim(ctx, agentID, monthIndex, input.Year)
	if err != nil {
		s.metrics.RecordClaim(metrics.ClaimResultError)
		return nil, err
	}
	if !check.Allowed {
		s.metrics.RecordClaim(metrics.ClaimResultDuplicate)
		return nil, fmt.Errorf("%w: %w", ErrClaimDuplicate, engine.ErrDuplicateClaim)
	}

	report, err := s.earnings.ComputePayout(ctx, agentID, input.Year, input.Month)
	if err != nil {
		s.metrics.RecordClaim(metrics.ClaimResultError)
		return nil, err
	}
	if !report.AgentFound {
		s.metrics.RecordClaim(metrics.ClaimResultError)
		return nil, ErrAgentNotFound
	}

	breakdown := report.Breakdown
	record := &models.ClaimRecord{
		ID:                 claimID,
		AgentID:            breakdown.AgentID,
		MonthIndex:         monthIndex,
		Year:               input.Year,
		DirectCommission:   models.NewMoneyFromDecimal(breakdown.DirectCommission),
		OverrideCommission: models.NewMoneyFromDecimal(breakdown.OverrideCommission),
		BaseSalary:         models.NewMoneyFromDecimal(breakdown.BaseSalary),
		PerformanceBonus:   models.NewMoneyFromDecimal(breakdown.PerformanceBonus),
		TotalPayout:        models.NewMoneyFromDecimal(breakdown.Total),
		OperatorID:         strings.TrimSpace(input.OperatorID),
		ClaimedAt:          s.now(),
	}
	if err := s.persist(ctx, record); err != nil {
		if errors.Is(err, repository.ErrClaimRecordExists) {
			s.metrics.RecordClaim(metrics.ClaimResultDuplicate)
			return nil, fmt.Errorf("%w: %w", ErrClaimDuplicate, engine.ErrDuplicateClaim)
		}
		s.metrics.RecordClaim(metrics.ClaimResultError)
		return nil, err
	}
	s.metrics.RecordClaim(metrics.ClaimResultRecorded)
	logger.Infow("claim_payout_recorded",
		"claim_id", record.ID,
		"agent_id", record.AgentID,
		"year", record.Year,
		"month_index", record.MonthIndex,
		"total_payout", record.TotalPayout.String(),
		"operator_id", record.OperatorID,
	)

	if err := s.queueClient.EnqueuePayoutClaimRecorded(queue.PayoutClaimRecordedPayload{
		ClaimID:     record.ID,
		AgentID:     record.AgentID,
		MonthIndex:  record.MonthIndex,
		Year:        record.Year,
		TotalPayout: record.TotalPayout.String(),
		OperatorID:  record.OperatorID,
	}); err != nil {
		logger.Warnw("claim_recorded_enqueue_failed", "claim_id", record.ID, "error", err)
	}

	return &ClaimOutcome{
		ClaimID: record.ID,
		Record:  record,
		Report:  report,
	}, nil
}

// persist 事务内再次确认并写入领取记录，唯一约束兜底跨进程并发
func (s *ClaimService) persist(ctx context.Context, record *models.ClaimRecord) error {
	if s.db == nil {
		return s.claimRepo.Create(ctx, record)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimRepo := s.claimRepo.WithTx(tx)
		exists, err := claimRepo.ClaimExists(ctx, record.ID)
		if err != nil {
			return err
		}
		if exists {
			return repository.ErrClaimRecordExists
		}
		return claimRepo.Create(ctx, record)
	})
}

// GetClaim 按凭证编号查询领取记录
func (s *ClaimService) GetClaim(ctx context.Context, claimID string) (*models.ClaimRecord, error) {
	record, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}
	return record, nil
}

// ListClaims 分页查询领取记录
func (s *ClaimService) ListClaims(ctx context.Context, filter repository.ClaimListFilter) ([]models.ClaimRecord, int64, error) {
	return s.claimRepo.List(ctx, filter)
}
