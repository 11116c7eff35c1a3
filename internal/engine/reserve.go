package engine

import (
	"github.com/fleetdesk/internal/models"

	"github.com/shopspring/decimal"
)

// ReserveMovement 收益平滑储备金的单月变动
type ReserveMovement struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Banked         decimal.Decimal `json:"banked"`
	Released       decimal.Decimal `json:"released"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	PaidInterest   decimal.Decimal `json:"paid_interest"`
}

// ApplySmartYieldReserve 封顶月份把超出部分存入储备，未达上限的月份用储备补足至上限
// 未启用封顶或未设置上限时储备不动，原样发放当月收益
func ApplySmartYieldReserve(projection YieldProjection, agreement models.InvestmentAgreement, openingBalance decimal.Decimal) ReserveMovement {
	opening := NonNegative(openingBalance)
	movement := ReserveMovement{
		OpeningBalance: opening,
		Banked:         decimal.Zero,
		Released:       decimal.Zero,
		ClosingBalance: opening,
		PaidInterest:   projection.MonthlyInterest,
	}

	smoothing := agreement.SmartYieldActive && projection.RoiCapAmount.GreaterThan(decimal.Zero)
	if !smoothing {
		return movement
	}

	if projection.IsCapped {
		movement.Banked = projection.ForegoneInterest
		movement.ClosingBalance = opening.Add(movement.Banked)
		return movement
	}

	headroom := NonNegative(projection.RoiCapAmount.Sub(projection.TheoreticalInterest))
	if headroom.IsZero() || opening.IsZero() {
		return movement
	}
	movement.Released = decimal.Min(opening, headroom)
	movement.ClosingBalance = opening.Sub(movement.Released)
	movement.PaidInterest = projection.MonthlyInterest.Add(movement.Released)
	return movement
}
