package engine

import (
	"time"

	"github.com/fleetdesk/internal/models"

	"github.com/shopspring/decimal"
)

func money(raw string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(raw))
}

func pct(raw string) models.Percent {
	return models.NewPercentFromDecimal(decimal.RequireFromString(raw))
}

func dec(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func paymentOf(clientID, agentID, amount string, monthsCovered int, at time.Time) models.Payment {
	return models.Payment{
		ClientID:      clientID,
		AgentID:       agentID,
		Amount:        money(amount),
		MonthsCovered: monthsCovered,
		Date:          at,
	}
}
