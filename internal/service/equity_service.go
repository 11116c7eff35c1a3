package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fleetdesk/internal/cache"
	"github.com/fleetdesk/internal/config"
	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/engine"
	"github.com/fleetdesk/internal/logger"
	"github.com/fleetdesk/internal/metrics"
	"github.com/fleetdesk/internal/models"
	"github.com/fleetdesk/internal/queue"
	"github.com/fleetdesk/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 结算结果
const (
	SettlementResultSettled = "settled"
	SettlementResultExists  = "exists"
	SettlementResultSkipped = "skipped"
	SettlementResultError   = "error"
)

// EquityService 合伙人投资协议与收益服务
type EquityService struct {
	agentRepo   repository.AgentRepository
	paymentRepo repository.PaymentRepository
	reserveRepo repository.YieldReserveRepository
	auditRepo   repository.AgreementAuditLogRepository
	queueClient *queue.Client
	engineCfg   config.EngineConfig
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewEquityService 创建合伙人收益服务
func NewEquityService(
	agentRepo repository.AgentRepository,
	paymentRepo repository.PaymentRepository,
	reserveRepo repository.YieldReserveRepository,
	auditRepo repository.AgreementAuditLogRepository,
	queueClient *queue.Client,
	engineCfg config.EngineConfig,
	m *metrics.Metrics,
) *EquityService {
	return &EquityService{
		agentRepo:   agentRepo,
		paymentRepo: paymentRepo,
		reserveRepo: reserveRepo,
		auditRepo:   auditRepo,
		queueClient: queueClient,
		engineCfg:   engineCfg,
		metrics:     m,
		now:         time.Now,
	}
}

// AgreementTermsInput 协议条款修改输入，空值字段不修改
type AgreementTermsInput struct {
	Principal        *string `json:"principal" validate:"omitempty,numeric"`
	EquityShare      *string `json:"equity_share" validate:"omitempty,numeric"`
	TermMonths       *int    `json:"term_months" validate:"omitempty,min=0,max=600"`
	PayoutModel      *string `json:"payout_model" validate:"omitempty,oneof=interest_only principal_plus_interest"`
	SmartYieldActive *bool   `json:"smart_yield_active"`
	MaxMonthlyROI    *string `json:"max_monthly_roi" validate:"omitempty,numeric"`
}

// AgreementStatusInput 协议状态流转输入
type AgreementStatusInput struct {
	Status string `json:"status" validate:"required,oneof=draft under_review active completed terminated"`
}

// AgreementChangeMeta 协议变更的操作上下文
type AgreementChangeMeta struct {
	OperatorID string
	RequestID  string
}

// YieldSimulationInput 临时协议收益测算输入
type YieldSimulationInput struct {
	Principal        string `json:"principal" validate:"omitempty,numeric"`
	EquityShare      string `json:"equity_share" validate:"omitempty,numeric"`
	TermMonths       int    `json:"term_months" validate:"min=0,max=600"`
	PayoutModel      string `json:"payout_model" validate:"omitempty,oneof=interest_only principal_plus_interest"`
	SmartYieldActive bool   `json:"smart_yield_active"`
	MaxMonthlyROI    string `json:"max_monthly_roi" validate:"omitempty,numeric"`
	MonthlyPool      string `json:"monthly_pool" validate:"omitempty,numeric"`
}

// AgentYieldReport 合伙人收益测算结果
type AgentYieldReport struct {
	AgentID     string                     `json:"agent_id"`
	Agreement   models.InvestmentAgreement `json:"agreement"`
	MonthlyPool models.Money               `json:"monthly_pool"`
	PoolSource  string                     `json:"pool_source"`
	Projection  engine.YieldProjection     `json:"projection"`
}

// SettlementInput 月度收益结算输入；Year/Month 为 0 表示上一个自然月
type SettlementInput struct {
	AgentID     string `json:"agent_id"`
	Year        int    `json:"year" validate:"omitempty,min=1"`
	Month       int    `json:"month" validate:"omitempty,min=1,max=12"`
	RevenuePool string `json:"revenue_pool" validate:"omitempty,numeric"`
}

// SettlementDispatch 结算派发结果
type SettlementDispatch struct {
	Queued  bool                       `json:"queued"`
	TaskID  string                     `json:"task_id,omitempty"`
	Year    int                        `json:"year"`
	Month   int                        `json:"month"`
	Entries []models.YieldReserveEntry `json:"entries,omitempty"`
}

// ComputeEquityYield 按协议与收益池计算当月收益分配
func (s *EquityService) ComputeEquityYield(agreement models.InvestmentAgreement, monthlyPool decimal.Decimal) engine.YieldProjection {
	projection := engine.ComputeEquityYield(agreement, monthlyPool)
	s.metrics.RecordYieldProjection(projection.IsCapped)
	return projection
}

// Simulate 对临时协议做收益测算
func (s *EquityService) Simulate(input YieldSimulationInput) (*engine.YieldProjection, error) {
	if err := validateStruct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrYieldInputInvalid, err)
	}
	agreement := models.InvestmentAgreement{
		Principal:        models.NewMoneyFromString(input.Principal),
		EquityShare:      models.NewPercentFromString(input.EquityShare),
		TermMonths:       input.TermMonths,
		PayoutModel:      engine.NormalizePayoutModel(input.PayoutModel),
		SmartYieldActive: input.SmartYieldActive,
		MaxMonthlyROI:    models.NewPercentFromString(input.MaxMonthlyROI),
	}
	projection := s.ComputeEquityYield(agreement, models.ParseDecimal(input.MonthlyPool))
	return &projection, nil
}

// YieldForAgent 按已存协议测算合伙人收益；rawPool 为空时使用本月回款合计
func (s *EquityService) YieldForAgent(ctx context.Context, agentID, rawPool string) (*AgentYieldReport, error) {
	agent, err := s.getPartner(agentID)
	if err != nil {
		return nil, err
	}
	report := &AgentYieldReport{
		AgentID:   agent.ID,
		Agreement: agent.Agreement,
	}
	pool := decimal.Zero
	if strings.TrimSpace(rawPool) != "" {
		if _, perr := decimal.NewFromString(strings.TrimSpace(rawPool)); perr != nil {
			return nil, fmt.Errorf("%w: pool is not numeric", ErrYieldInputInvalid)
		}
		pool = models.ParseDecimal(rawPool)
		report.PoolSource = "request"
	} else {
		window := engine.MonthWindowOf(s.now().In(s.engineCfg.Location()))
		if pool, err = s.paymentRepo.SumInRange(window.Start, window.End); err != nil {
			return nil, err
		}
		report.PoolSource = "current_month_payments"
	}
	report.MonthlyPool = models.NewMoneyFromDecimal(engine.NonNegative(pool))
	report.Projection = s.ComputeEquityYield(agent.Agreement, pool)
	return report, nil
}

func (s *EquityService) getPartner(agentID string) (*models.Agent, error) {
	if strings.TrimSpace(agentID) == "" {
		return nil, ErrAgentNotFound
	}
	agent, err := s.agentRepo.GetByID(agentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrAgentNotFound
	}
	if !agent.IsPartner() {
		return nil, ErrNotPartner
	}
	return agent, nil
}

// UpdateAgreementTerms 修改合伙人协议条款；协议生效期间冻结条款的修改会被拒绝并记录审计
func (s *EquityService) UpdateAgreementTerms(ctx context.Context, agentID string, input AgreementTermsInput, meta AgreementChangeMeta) (*models.Agent, error) {
	if err := validateStruct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAgreementInvalid, err)
	}
	patch := buildTermsPatch(input)

	var updated *models.Agent
	var rejected *models.Agent
	err := s.agentRepo.Transaction(func(tx *gorm.DB) error {
		agentRepo := s.agentRepo.WithTx(tx)
		agent, err := agentRepo.GetByIDForUpdate(agentID)
		if err != nil {
			return err
		}
		if agent == nil {
			return ErrAgentNotFound
		}
		if !agent.IsPartner() {
			return ErrNotPartner
		}
		next, err := engine.ApplyAgreementTerms(agent.Agreement, patch)
		if err != nil {
			if errors.Is(err, engine.ErrFrozenAgreementMutation) {
				rejected = agent
			}
			return err
		}
		if err := agentRepo.UpdateAgreement(agent.ID, next); err != nil {
			return err
		}
		status := engine.NormalizeInvestmentStatus(next.InvestmentStatus)
		if err := s.writeAudit(tx, &models.AgreementAuditLog{
			AgentID:    agent.ID,
			Action:     constants.AgreementAuditActionTermsUpdated,
			FromStatus: status,
			ToStatus:   status,
			DetailJSON: termsDetail(input),
		}, meta); err != nil {
			return err
		}
		agent.Agreement = next
		updated = agent
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrFrozenAgreementMutation):
			logger.Warnw("equity_agreement_frozen_mutation_rejected",
				"agent_id", agentID,
				"operator_id", meta.OperatorID,
				"request_id", meta.RequestID,
				"error", err,
			)
			if rejected != nil {
				status := engine.NormalizeInvestmentStatus(rejected.Agreement.InvestmentStatus)
				detail := termsDetail(input)
				detail["touched"] = patch.FrozenFieldsTouched(rejected.Agreement)
				if auditErr := s.writeAudit(nil, &models.AgreementAuditLog{
					AgentID:    rejected.ID,
					Action:     constants.AgreementAuditActionTermsRejected,
					FromStatus: status,
					ToStatus:   status,
					Rejected:   true,
					DetailJSON: detail,
				}, meta); auditErr != nil {
					logger.Errorw("equity_agreement_audit_write_failed", "agent_id", rejected.ID, "error", auditErr)
				}
			}
			return nil, fmt.Errorf("%w: %w", ErrAgreementFrozen, err)
		case errors.Is(err, engine.ErrAgreementTermsInvalid):
			return nil, fmt.Errorf("%w: %w", ErrAgreementInvalid, err)
		}
		return nil, err
	}
	logger.Infow("equity_agreement_terms_updated",
		"agent_id", updated.ID,
		"operator_id", meta.OperatorID,
		"request_id", meta.RequestID,
	)
	return updated, nil
}

// TransitionStatus 协议状态流转
func (s *EquityService) TransitionStatus(ctx context.Context, agentID string, input AgreementStatusInput, meta AgreementChangeMeta) (*models.Agent, error) {
	input.Status = engine.NormalizeInvestmentStatus(input.Status)
	if err := validateStruct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAgreementStatusInvalid, err)
	}

	var updated *models.Agent
	var from string
	err := s.agentRepo.Transaction(func(tx *gorm.DB) error {
		agentRepo := s.agentRepo.WithTx(tx)
		agent, err := agentRepo.GetByIDForUpdate(agentID)
		if err != nil {
			return err
		}
		if agent == nil {
			return ErrAgentNotFound
		}
		if !agent.IsPartner() {
			return ErrNotPartner
		}
		from = engine.NormalizeInvestmentStatus(agent.Agreement.InvestmentStatus)
		next, err := engine.TransitionAgreementStatus(agent.Agreement, input.Status, s.now())
		if err != nil {
			return err
		}
		if from == next.InvestmentStatus {
			updated = agent
			return nil
		}
		if err := agentRepo.UpdateAgreement(agent.ID, next); err != nil {
			return err
		}
		if err := s.writeAudit(tx, &models.AgreementAuditLog{
			AgentID:    agent.ID,
			Action:     constants.AgreementAuditActionStatusChanged,
			FromStatus: from,
			ToStatus:   next.InvestmentStatus,
		}, meta); err != nil {
			return err
		}
		agent.Agreement = next
		updated = agent
		return nil
	})
	if err != nil {
		if errors.Is(err, engine.ErrAgreementStatusInvalid) {
			if auditErr := s.writeAudit(nil, &models.AgreementAuditLog{
				AgentID:    strings.TrimSpace(agentID),
				Action:     constants.AgreementAuditActionStatusRejected,
				FromStatus: from,
				ToStatus:   input.Status,
				Rejected:   true,
			}, meta); auditErr != nil {
				logger.Errorw("equity_agreement_audit_write_failed", "agent_id", agentID, "error", auditErr)
			}
			return nil, fmt.Errorf("%w: %w", ErrAgreementStatusInvalid, err)
		}
		return nil, err
	}
	logger.Infow("equity_agreement_status_changed",
		"agent_id", updated.ID,
		"from", from,
		"to", updated.Agreement.InvestmentStatus,
		"operator_id", meta.OperatorID,
		"request_id", meta.RequestID,
	)
	return updated, nil
}

func (s *EquityService) writeAudit(tx *gorm.DB, entry *models.AgreementAuditLog, meta AgreementChangeMeta) error {
	if s.auditRepo == nil || entry == nil {
		return nil
	}
	entry.OperatorID = strings.TrimSpace(meta.OperatorID)
	entry.RequestID = strings.TrimSpace(meta.RequestID)
	if entry.DetailJSON == nil {
		entry.DetailJSON = models.JSON{}
	}
	return s.auditRepo.WithTx(tx).Create(entry)
}

func buildTermsPatch(input AgreementTermsInput) engine.AgreementTermsPatch {
	patch := engine.AgreementTermsPatch{
		PayoutModel:      input.PayoutModel,
		TermMonths:       input.TermMonths,
		SmartYieldActive: input.SmartYieldActive,
	}
	if input.Principal != nil {
		value := models.ParseDecimal(*input.Principal)
		patch.Principal = &value
	}
	if input.EquityShare != nil {
		value := models.ParseDecimal(*input.EquityShare)
		patch.EquityShare = &value
	}
	if input.MaxMonthlyROI != nil {
		value := models.ParseDecimal(*input.MaxMonthlyROI)
		patch.MaxMonthlyROI = &value
	}
	return patch
}

func termsDetail(input AgreementTermsInput) models.JSON {
	detail := models.JSON{}
	if input.Principal != nil {
		detail["principal"] = *input.Principal
	}
	if input.EquityShare != nil {
		detail["equity_share"] = *input.EquityShare
	}
	if input.TermMonths != nil {
		detail["term_months"] = *input.TermMonths
	}
	if input.PayoutModel != nil {
		detail["payout_model"] = *input.PayoutModel
	}
	if input.SmartYieldActive != nil {
		detail["smart_yield_active"] = *input.SmartYieldActive
	}
	if input.MaxMonthlyROI != nil {
		detail["max_monthly_roi"] = *input.MaxMonthlyROI
	}
	return detail
}

// ResolveSettlementPeriod 解析结算周期，未指定时取当前时间的上一个自然月
func (s *EquityService) ResolveSettlementPeriod(year, month int) (int, int, error) {
	if year == 0 && month == 0 {
		previous := engine.MonthWindowOf(s.now().In(s.engineCfg.Location())).Start.AddDate(0, -1, 0)
		return previous.Year(), int(previous.Month()), nil
	}
	if year < 1 || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: %d-%02d", ErrSettlementInvalid, year, month)
	}
	return year, month, nil
}

// EnqueueSettlement 派发月度收益结算；队列未启用时同步执行
func (s *EquityService) EnqueueSettlement(ctx context.Context, input SettlementInput) (*SettlementDispatch, error) {
	if err := validateStruct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementInvalid, err)
	}
	year, month, err := s.ResolveSettlementPeriod(input.Year, input.Month)
	if err != nil {
		return nil, err
	}
	dispatch := &SettlementDispatch{Year: year, Month: month}
	payload := queue.YieldSettlementPayload{
		AgentID:     strings.TrimSpace(input.AgentID),
		Year:        year,
		Month:       month,
		RevenuePool: strings.TrimSpace(input.RevenuePool),
	}
	if s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueYieldSettlement(payload); err != nil {
			logger.Errorw("equity_settlement_enqueue_failed", "agent_id", payload.AgentID, "year", year, "month", month, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrQueueUnavailable, err)
		}
		dispatch.Queued = true
		dispatch.TaskID = queue.YieldSettlementTaskID(payload)
		logger.Infow("equity_settlement_enqueued", "task_id", dispatch.TaskID)
		return dispatch, nil
	}
	input.Year, input.Month = year, month
	entries, err := s.SettleMonthlyYield(ctx, input)
	if err != nil {
		return nil, err
	}
	dispatch.Entries = entries
	return dispatch, nil
}

// SettleMonthlyYield 执行月度收益结算，同一合伙人同一月份只结算一次
// AgentID 为空时结算全部协议生效中的合伙人
func (s *EquityService) SettleMonthlyYield(ctx context.Context, input SettlementInput) ([]models.YieldReserveEntry, error) {
	if err := validateStruct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementInvalid, err)
	}
	year, month, err := s.ResolveSettlementPeriod(input.Year, input.Month)
	if err != nil {
		return nil, err
	}
	window := engine.NewMonthWindow(year, time.Month(month), s.engineCfg.Location())

	pool := models.ParseDecimal(input.RevenuePool)
	if strings.TrimSpace(input.RevenuePool) == "" {
		if pool, err = s.paymentRepo.SumInRange(window.Start, window.End); err != nil {
			return nil, err
		}
	}

	var partners []models.Agent
	if strings.TrimSpace(input.AgentID) != "" {
		agent, err := s.getPartner(input.AgentID)
		if err != nil {
			return nil, err
		}
		if engine.NormalizeInvestmentStatus(agent.Agreement.InvestmentStatus) != constants.InvestmentStatusActive {
			return nil, fmt.Errorf("%w: agreement of %s is not active", ErrSettlementInvalid, agent.ID)
		}
		partners = []models.Agent{*agent}
	} else if partners, err = s.agentRepo.ListActivePartners(); err != nil {
		return nil, err
	}

	entries := make([]models.YieldReserveEntry, 0, len(partners))
	for i := range partners {
		entry, result, err := s.settlePartner(ctx, &partners[i], year, month, pool)
		if errors.Is(err, ErrSettlementOutOfOrder) && strings.TrimSpace(input.AgentID) == "" {
			s.metrics.RecordSettlement(SettlementResultSkipped, 0, 0)
			logger.Warnw("equity_settlement_out_of_order", "agent_id", partners[i].ID, "year", year, "month", month, "error", err)
			continue
		}
		if err != nil {
			s.metrics.RecordSettlement(SettlementResultError, 0, 0)
			logger.Errorw("equity_settlement_failed",
				"agent_id", partners[i].ID,
				"year", year,
				"month", month,
				"error", err,
			)
			return entries, err
		}
		if entry == nil {
			s.metrics.RecordSettlement(result, 0, 0)
			continue
		}
		banked, _ := entry.Banked.Float64()
		released, _ := entry.Released.Float64()
		if result == SettlementResultExists {
			banked, released = 0, 0
		}
		s.metrics.RecordSettlement(result, banked, released)
		entries = append(entries, *entry)
	}
	logger.Infow("equity_settlement_completed",
		"agent_id", input.AgentID,
		"year", year,
		"month", month,
		"revenue_pool", pool.StringFixed(2),
		"entries", len(entries),
	)
	return entries, nil
}

func (s *EquityService) settlePartner(ctx context.Context, agent *models.Agent, year, month int, pool decimal.Decimal) (*models.YieldReserveEntry, string, error) {
	lock, err := cache.AcquireSettlementLock(ctx, agent.ID, year, month, s.engineCfg.ClaimLockTTL())
	if err != nil {
		return nil, SettlementResultError, err
	}
	if lock == nil {
		logger.Warnw("equity_settlement_locked", "agent_id", agent.ID, "year", year, "month", month)
		return nil, SettlementResultSkipped, nil
	}
	defer func() {
		if releaseErr := cache.ReleaseLock(ctx, lock); releaseErr != nil {
			logger.Warnw("equity_settlement_unlock_failed", "agent_id", agent.ID, "error", releaseErr)
		}
	}()

	var entry *models.YieldReserveEntry
	result := SettlementResultSettled
	err = s.reserveRepo.Transaction(func(tx *gorm.DB) error {
		reserveRepo := s.reserveRepo.WithTx(tx)
		existing, err := reserveRepo.GetByPeriod(agent.ID, year, month)
		if err != nil {
			return err
		}
		if existing != nil {
			entry = existing
			result = SettlementResultExists
			return nil
		}
		latest, err := reserveRepo.GetLatest(agent.ID)
		if err != nil {
			return err
		}
		if latest != nil && (latest.Year > year || (latest.Year == year && latest.Month > month)) {
			return fmt.Errorf("%w: %s already settled %d-%02d", ErrSettlementOutOfOrder, agent.ID, latest.Year, latest.Month)
		}
		opening := decimal.Zero
		previous, err := reserveRepo.GetLatestBefore(agent.ID, year, month)
		if err != nil {
			return err
		}
		if previous != nil {
			opening = previous.BalanceAfter.Decimal
		}

		projection := s.ComputeEquityYield(agent.Agreement, pool)
		movement := engine.ApplySmartYieldReserve(projection, agent.Agreement, opening)
		entry = &models.YieldReserveEntry{
			AgentID:             agent.ID,
			Year:                year,
			Month:               month,
			RevenuePool:         models.NewMoneyFromDecimal(engine.NonNegative(pool)),
			TheoreticalInterest: models.NewMoneyFromDecimal(projection.TheoreticalInterest),
			CapAmount:           models.NewMoneyFromDecimal(projection.RoiCapAmount),
			PaidInterest:        models.NewMoneyFromDecimal(movement.PaidInterest),
			PrincipalReturn:     models.NewMoneyFromDecimal(projection.MonthlyPrincipalReturn),
			Banked:              models.NewMoneyFromDecimal(movement.Banked),
			Released:            models.NewMoneyFromDecimal(movement.Released),
			BalanceAfter:        models.NewMoneyFromDecimal(movement.ClosingBalance),
		}
		return reserveRepo.Create(entry)
	})
	if err != nil {
		return nil, SettlementResultError, err
	}
	if result == SettlementResultSettled {
		logger.Infow("equity_settlement_entry_created",
			"agent_id", agent.ID,
			"year", year,
			"month", month,
			"paid_interest", entry.PaidInterest.String(),
			"banked", entry.Banked.String(),
			"released", entry.Released.String(),
			"balance_after", entry.BalanceAfter.String(),
		)
	}
	return entry, result, nil
}

// ListReserve 查询合伙人储备金台账
func (s *EquityService) ListReserve(agentID string, page, pageSize int) ([]models.YieldReserveEntry, int64, error) {
	agent, err := s.getPartner(agentID)
	if err != nil {
		return nil, 0, err
	}
	return s.reserveRepo.ListByAgent(agent.ID, page, pageSize)
}

// ListAuditLogs 查询协议审计日志
func (s *EquityService) ListAuditLogs(filter repository.AgreementAuditLogListFilter) ([]models.AgreementAuditLog, int64, error) {
	if s.auditRepo == nil {
		return []models.AgreementAuditLog{}, 0, nil
	}
	return s.auditRepo.ListAdmin(filter)
}
