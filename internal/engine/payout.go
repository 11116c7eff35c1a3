package engine

import (
	"strings"

	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/models"

	"github.com/shopspring/decimal"
)

// OverrideRatePercent 直属学员业绩的固定团队津贴比例，不按人配置
const OverrideRatePercent = 5

var overrideRate = decimal.NewFromInt(OverrideRatePercent)

// PayoutBreakdown 月度提成明细
type PayoutBreakdown struct {
	AgentID             string          `json:"agent_id"`
	Window              MonthWindow     `json:"window"`
	CommissionRate      decimal.Decimal `json:"commission_rate"`
	DirectRevenue       decimal.Decimal `json:"direct_revenue"`
	NetworkRevenue      decimal.Decimal `json:"network_revenue"`
	DirectPaymentCount  int             `json:"direct_payment_count"`
	NetworkPaymentCount int             `json:"network_payment_count"`
	DirectCommission    decimal.Decimal `json:"direct_commission"`
	OverrideCommission  decimal.Decimal `json:"override_commission"`
	BaseSalary          decimal.Decimal `json:"base_salary"`
	PerformanceBonus    decimal.Decimal `json:"performance_bonus"`
	Total               decimal.Decimal `json:"total"`
}

// NormalizeAttribution 归一化佣金归属口径，默认按回款时点归属
func NormalizeAttribution(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case constants.AttributionQueryTime:
		return constants.AttributionQueryTime
	default:
		return constants.AttributionPaymentTime
	}
}

// RecognizedAmount 月度确认收入：多月回款按覆盖月数均摊
func RecognizedAmount(payment models.Payment) decimal.Decimal {
	amount := NonNegative(payment.Amount.Decimal)
	return amount.Div(decimal.NewFromInt(int64(atLeastOne(payment.MonthsCovered))))
}

// ComputePayout 计算业务员在统计区间内的月度提成
// agent 为空时按未知业务员处理：返回全零明细与 ErrInvalidAgentReference
func ComputePayout(agent *models.Agent, window MonthWindow, payments []models.Payment, h Hierarchy, attribution string) (PayoutBreakdown, error) {
	breakdown := PayoutBreakdown{
		Window:             window,
		CommissionRate:     decimal.Zero,
		DirectRevenue:      decimal.Zero,
		NetworkRevenue:     decimal.Zero,
		DirectCommission:   decimal.Zero,
		OverrideCommission: decimal.Zero,
		BaseSalary:         decimal.Zero,
		PerformanceBonus:   decimal.Zero,
		Total:              decimal.Zero,
	}
	if agent == nil {
		return breakdown, ErrInvalidAgentReference
	}
	breakdown.AgentID = agent.ID
	breakdown.CommissionRate = NonNegative(agent.CommissionRate.Decimal)
	breakdown.BaseSalary = NonNegative(agent.BaseSalary.Decimal)
	breakdown.PerformanceBonus = NonNegative(agent.PerformanceBonus.Decimal)

	resolver := newAttributionResolver(agent.ID, h, NormalizeAttribution(attribution))
	for _, payment := range payments {
		if !window.Contains(payment.Date) {
			continue
		}
		switch resolver.classify(payment) {
		case attributedDirect:
			breakdown.DirectRevenue = breakdown.DirectRevenue.Add(RecognizedAmount(payment))
			breakdown.DirectPaymentCount++
		case attributedNetwork:
			breakdown.NetworkRevenue = breakdown.NetworkRevenue.Add(RecognizedAmount(payment))
			breakdown.NetworkPaymentCount++
		}
	}

	breakdown.DirectCommission = percentOf(breakdown.DirectRevenue, breakdown.CommissionRate)
	breakdown.OverrideCommission = percentOf(breakdown.NetworkRevenue, overrideRate)
	breakdown.Total = breakdown.DirectCommission.
		Add(breakdown.OverrideCommission).
		Add(breakdown.BaseSalary).
		Add(breakdown.PerformanceBonus)
	return breakdown, nil
}

type attribution int

const (
	attributedNone attribution = iota
	attributedDirect
	attributedNetwork
)

// attributionResolver 判定单笔回款归属于本人、直属学员还是无关
type attributionResolver struct {
	agentID        string
	policy         string
	trainees       idSet
	directClients  idSet
	traineeClients idSet
}

func newAttributionResolver(agentID string, h Hierarchy, policy string) attributionResolver {
	r := attributionResolver{
		agentID:        agentID,
		policy:         policy,
		trainees:       newIDSet(h.TraineeIDs()...),
		directClients:  newIDSet(),
		traineeClients: newIDSet(),
	}
	for _, client := range h.DirectClients {
		r.directClients.add(client.ID)
	}
	for _, client := range h.TraineeClients {
		r.traineeClients.add(client.ID)
	}
	return r
}

func (r attributionResolver) classify(payment models.Payment) attribution {
	if r.policy == constants.AttributionPaymentTime && NormalizeID(payment.AgentID) != "" {
		switch {
		case SameID(payment.AgentID, r.agentID):
			return attributedDirect
		case r.trainees.has(payment.AgentID):
			return attributedNetwork
		default:
			return attributedNone
		}
	}
	switch {
	case r.directClients.has(payment.ClientID):
		return attributedDirect
	case r.traineeClients.has(payment.ClientID):
		return attributedNetwork
	default:
		return attributedNone
	}
}
