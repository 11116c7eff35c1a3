package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fleetdesk/internal/config"
	"github.com/fleetdesk/internal/engine"
	"github.com/fleetdesk/internal/logger"
	"github.com/fleetdesk/internal/metrics"
	"github.com/fleetdesk/internal/models"
	"github.com/fleetdesk/internal/repository"
)

// EarningsService 业务员提成、晋升与团队视图服务
type EarningsService struct {
	agentRepo    repository.AgentRepository
	clientRepo   repository.ClientRepository
	paymentRepo  repository.PaymentRepository
	contractRepo repository.ContractRepository
	engineCfg    config.EngineConfig
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewEarningsService 创建提成服务
func NewEarningsService(
	agentRepo repository.AgentRepository,
	clientRepo repository.ClientRepository,
	paymentRepo repository.PaymentRepository,
	contractRepo repository.ContractRepository,
	engineCfg config.EngineConfig,
	m *metrics.Metrics,
) *EarningsService {
	return &EarningsService{
		agentRepo:    agentRepo,
		clientRepo:   clientRepo,
		paymentRepo:  paymentRepo,
		contractRepo: contractRepo,
		engineCfg:    engineCfg,
		metrics:      m,
		now:          time.Now,
	}
}

// PayoutReport 月度提成报告
type PayoutReport struct {
	AgentFound          bool                   `json:"agent_found"`
	Attribution         string                 `json:"attribution"`
	Year                int                    `json:"year"`
	Month               int                    `json:"month"`
	Breakdown           engine.PayoutBreakdown `json:"breakdown"`
	DirectClientCount   int                    `json:"direct_client_count"`
	TraineeCount        int                    `json:"trainee_count"`
	NetworkClientCount  int                    `json:"network_client_count"`
	NewClientCount      int                    `json:"new_client_count"`
	ActiveContractCount int64                  `json:"active_contract_count"`
	Rank                *engine.RankProgress   `json:"rank,omitempty"`
}

// NetworkTrainee 团队视图中的直属学员
type NetworkTrainee struct {
	AgentID         string `json:"agent_id"`
	Name            string `json:"name"`
	ExperienceLevel string `json:"experience_level"`
	ClientCount     int    `json:"client_count"`
}

// NetworkView 业务员团队视图
type NetworkView struct {
	AgentID            string           `json:"agent_id"`
	Depth              int              `json:"depth"`
	DirectClientCount  int              `json:"direct_client_count"`
	NetworkClientCount int              `json:"network_client_count"`
	Trainees           []NetworkTrainee `json:"trainees"`
}

// agentSnapshot 单次计算所用的只读快照
type agentSnapshot struct {
	agent     *models.Agent
	hierarchy engine.Hierarchy
}

// loadSnapshot 加载业务员、直属学员及其客户；业务员不存在时 agent 为 nil
func (s *EarningsService) loadSnapshot(agentID string) (agentSnapshot, error) {
	agents, err := s.agentRepo.ListAll()
	if err != nil {
		return agentSnapshot{}, err
	}
	snapshot := agentSnapshot{hierarchy: engine.ResolveHierarchy(agents, nil, agentID)}
	agent, ok := engine.FindAgent(agents, agentID)
	if !ok {
		return snapshot, nil
	}
	snapshot.agent = agent

	owners := append([]string{agent.ID}, snapshot.hierarchy.TraineeIDs()...)
	clients, err := s.clientRepo.ListByAgentIDs(owners)
	if err != nil {
		return agentSnapshot{}, err
	}
	snapshot.hierarchy = engine.ResolveHierarchy(agents, clients, agent.ID)
	return snapshot, nil
}

// CanonicalAgentID 返回库中登记的业务员编号；不存在时 found 为 false
func (s *EarningsService) CanonicalAgentID(agentID string) (string, bool, error) {
	agent, err := s.agentRepo.GetByID(agentID)
	if err != nil {
		return "", false, err
	}
	if agent == nil {
		return strings.TrimSpace(agentID), false, nil
	}
	return agent.ID, true, nil
}

// ComputePayout 计算业务员指定自然月（month 1-12）的提成报告
// 业务员不存在时返回全零报告，AgentFound 为 false
func (s *EarningsService) ComputePayout(ctx context.Context, agentID string, year, month int) (*PayoutReport, error) {
	if strings.TrimSpace(agentID) == "" {
		return nil, ErrAgentNotFound
	}
	if year < 1 || month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: %d-%02d", ErrPeriodInvalid, year, month)
	}
	started := time.Now()
	attribution := engine.NormalizeAttribution(s.engineCfg.Attribution)
	window := engine.NewMonthWindow(year, time.Month(month), s.engineCfg.Location())

	snapshot, err := s.loadSnapshot(agentID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListInRange(window.Start, window.End)
	if err != nil {
		return nil, err
	}

	report := &PayoutReport{
		Attribution: attribution,
		Year:        year,
		Month:       month,
	}
	breakdown, err := engine.ComputePayout(snapshot.agent, window, payments, snapshot.hierarchy, attribution)
	report.Breakdown = breakdown
	if errors.Is(err, engine.ErrInvalidAgentReference) {
		logger.Warnw("earnings_payout_agent_not_found",
			"agent_id", agentID,
			"year", year,
			"month", month,
		)
		s.metrics.RecordPayout(attribution, false, time.Since(started))
		return report, nil
	}
	if err != nil {
		s.metrics.RecordPayout(attribution, false, time.Since(started))
		return nil, err
	}
	report.AgentFound = true

	h := snapshot.hierarchy
	report.DirectClientCount = len(h.DirectClients)
	report.TraineeCount = len(h.TraineeAgents)
	report.NetworkClientCount = len(h.TraineeClients)
	clientIDs := make([]string, 0, len(h.DirectClients))
	for _, client := range h.DirectClients {
		clientIDs = append(clientIDs, client.ID)
		if client.OnboardingDate != nil && window.Contains(*client.OnboardingDate) {
			report.NewClientCount++
		}
	}
	if report.ActiveContractCount, err = s.contractRepo.CountActiveByClients(clientIDs); err != nil {
		return nil, err
	}

	rank, err := engine.ComputeRankProgress(snapshot.agent, h, s.rankAsOf(window))
	if err != nil {
		return nil, err
	}
	report.Rank = &rank

	s.metrics.RecordPayout(attribution, true, time.Since(started))
	logger.Debugw("earnings_payout_computed",
		"agent_id", breakdown.AgentID,
		"year", year,
		"month", month,
		"attribution", attribution,
		"direct_payments", breakdown.DirectPaymentCount,
		"network_payments", breakdown.NetworkPaymentCount,
		"total", breakdown.Total.StringFixed(2),
	)
	return report, nil
}

// rankAsOf 历史月份按月末统计客户数，当月及未来月份按当前时间统计
func (s *EarningsService) rankAsOf(window engine.MonthWindow) time.Time {
	now := s.now().In(window.Start.Location())
	if now.Before(window.End) {
		return now
	}
	return window.End.Add(-time.Nanosecond)
}

// RankReport 晋升进度报告，未知业务员按零客户数返回
type RankReport struct {
	AgentFound bool `json:"agent_found"`
	engine.RankProgress
}

// ComputeRankProgress 计算业务员当前晋升进度
func (s *EarningsService) ComputeRankProgress(ctx context.Context, agentID string) (*RankReport, error) {
	snapshot, err := s.loadSnapshot(agentID)
	if err != nil {
		return nil, err
	}
	progress, err := engine.ComputeRankProgress(snapshot.agent, snapshot.hierarchy, s.now())
	if errors.Is(err, engine.ErrInvalidAgentReference) {
		logger.Warnw("earnings_rank_agent_not_found", "agent_id", agentID)
		return &RankReport{AgentFound: false, RankProgress: progress}, nil
	}
	if err != nil {
		return nil, err
	}
	return &RankReport{AgentFound: true, RankProgress: progress}, nil
}

// GetNetwork 返回业务员的直属学员及其客户数
func (s *EarningsService) GetNetwork(ctx context.Context, agentID string) (*NetworkView, error) {
	snapshot, err := s.loadSnapshot(agentID)
	if err != nil {
		return nil, err
	}
	if snapshot.agent == nil {
		return nil, ErrAgentNotFound
	}
	h := snapshot.hierarchy
	view := &NetworkView{
		AgentID:            snapshot.agent.ID,
		Depth:              engine.NetworkDepth,
		DirectClientCount:  len(h.DirectClients),
		NetworkClientCount: len(h.TraineeClients),
		Trainees:           make([]NetworkTrainee, 0, len(h.TraineeAgents)),
	}
	for _, trainee := range h.TraineeAgents {
		view.Trainees = append(view.Trainees, NetworkTrainee{
			AgentID:         trainee.ID,
			Name:            trainee.Name,
			ExperienceLevel: engine.NormalizeLevel(trainee.ExperienceLevel),
			ClientCount:     h.TraineeClientCount(trainee.ID),
		})
	}
	return view, nil
}

// ListAgents 后台业务员列表
func (s *EarningsService) ListAgents(filter repository.AgentListFilter) ([]models.Agent, int64, error) {
	return s.agentRepo.List(filter)
}

// ListPayments 后台回款列表
func (s *EarningsService) ListPayments(filter repository.PaymentListFilter) ([]models.Payment, int64, error) {
	return s.paymentRepo.ListAdmin(filter)
}
