package engine

import (
	"strings"

	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/models"

	"github.com/shopspring/decimal"
)

// YieldProjection 合伙人月度收益测算
// 期限合计为“收益池恒定”假设下的模拟值，不代表实际发放流水
type YieldProjection struct {
	MonthlyPrincipalReturn decimal.Decimal `json:"monthly_principal_return"`
	TheoreticalInterest    decimal.Decimal `json:"theoretical_interest"`
	RoiCapAmount           decimal.Decimal `json:"roi_cap_amount"`
	MonthlyInterest        decimal.Decimal `json:"monthly_interest"`
	ForegoneInterest       decimal.Decimal `json:"foregone_interest"`
	IsCapped               bool            `json:"is_capped"`
	MonthlyTotal           decimal.Decimal `json:"monthly_total"`
	TermMonths             int             `json:"term_months"`
	TermTotalInterest      decimal.Decimal `json:"term_total_interest"`
	TermTotalPayout        decimal.Decimal `json:"term_total_payout"`
	Simulated              bool            `json:"simulated"`
}

// ComputeEquityYield 根据投资协议与当月收益池计算收益分配
// 封顶后超出部分只体现在 ForegoneInterest，不在此处结转
func ComputeEquityYield(agreement models.InvestmentAgreement, monthlyPool decimal.Decimal) YieldProjection {
	principal := NonNegative(agreement.Principal.Decimal)
	equityShare := NonNegative(agreement.EquityShare.Decimal)
	maxROI := NonNegative(agreement.MaxMonthlyROI.Decimal)
	pool := NonNegative(monthlyPool)
	termMonths := agreement.TermMonths
	if termMonths < 0 {
		termMonths = 0
	}

	projection := YieldProjection{
		MonthlyPrincipalReturn: decimal.Zero,
		ForegoneInterest:       decimal.Zero,
		TermMonths:             termMonths,
		Simulated:              true,
	}
	if NormalizePayoutModel(agreement.PayoutModel) == constants.PayoutModelPrincipalPlusInterest {
		projection.MonthlyPrincipalReturn = principal.Div(decimal.NewFromInt(int64(atLeastOne(termMonths))))
	}

	projection.TheoreticalInterest = percentOf(pool, equityShare)
	projection.RoiCapAmount = percentOf(principal, maxROI)
	projection.IsCapped = agreement.SmartYieldActive &&
		maxROI.GreaterThan(decimal.Zero) &&
		projection.TheoreticalInterest.GreaterThan(projection.RoiCapAmount)

	projection.MonthlyInterest = projection.TheoreticalInterest
	if projection.IsCapped {
		projection.MonthlyInterest = projection.RoiCapAmount
		projection.ForegoneInterest = projection.TheoreticalInterest.Sub(projection.RoiCapAmount)
	}
	projection.MonthlyTotal = projection.MonthlyPrincipalReturn.Add(projection.MonthlyInterest)

	months := decimal.NewFromInt(int64(termMonths))
	projection.TermTotalInterest = projection.MonthlyInterest.Mul(months)
	projection.TermTotalPayout = projection.MonthlyTotal.Mul(months)
	return projection
}

// NormalizePayoutModel 归一化回款模式，未知值按只付收益处理
func NormalizePayoutModel(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case constants.PayoutModelPrincipalPlusInterest:
		return constants.PayoutModelPrincipalPlusInterest
	default:
		return constants.PayoutModelInterestOnly
	}
}
