package engine

import (
	"testing"
	"time"

	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePayoutEndToEnd(t *testing.T) {
	agent := models.Agent{ID: "A", CommissionRate: pct("10"), BaseSalary: money("500")}
	clients := []models.Client{{ID: "C1", AssignedAgentID: "A"}}
	payments := []models.Payment{paymentOf("C1", "", "1000", 1, day(2024, time.March, 5))}
	h := ResolveHierarchy([]models.Agent{agent}, clients, "A")

	got, err := ComputePayout(&agent, NewMonthWindow(2024, time.March, time.UTC), payments, h, constants.AttributionPaymentTime)
	require.NoError(t, err)

	assert.True(t, got.DirectCommission.Equal(dec("100")), got.DirectCommission.String())
	assert.True(t, got.OverrideCommission.IsZero())
	assert.True(t, got.Total.Equal(dec("600")), got.Total.String())
}

func TestComputePayoutMonthlyRecognition(t *testing.T) {
	agent := models.Agent{ID: "A", CommissionRate: pct("10")}
	clients := []models.Client{{ID: "C1", AssignedAgentID: "A"}}
	payments := []models.Payment{paymentOf("C1", "A", "1200", 12, day(2024, time.January, 15))}
	h := ResolveHierarchy([]models.Agent{agent}, clients, "A")

	got, err := ComputePayout(&agent, NewMonthWindow(2024, time.January, nil), payments, h, "")
	require.NoError(t, err)
	assert.True(t, got.DirectRevenue.Equal(dec("100")), got.DirectRevenue.String())
	assert.Equal(t, 1, got.DirectPaymentCount)
}

func TestComputePayoutRateInvariance(t *testing.T) {
	agent := models.Agent{ID: "A", CommissionRate: pct("7.5")}
	window := NewMonthWindow(2024, time.May, time.UTC)
	base := []models.Client{{ID: "C1", AssignedAgentID: "A"}, {ID: "C2", AssignedAgentID: "A"}}
	single := []models.Payment{
		paymentOf("C1", "A", "333.33", 1, day(2024, time.May, 2)),
		paymentOf("C2", "A", "120", 3, day(2024, time.May, 9)),
	}
	doubled := append(append([]models.Payment{}, single...), single...)
	h := ResolveHierarchy([]models.Agent{agent}, base, "A")

	one, err := ComputePayout(&agent, window, single, h, constants.AttributionPaymentTime)
	require.NoError(t, err)
	two, err := ComputePayout(&agent, window, doubled, h, constants.AttributionPaymentTime)
	require.NoError(t, err)

	assert.True(t, two.DirectCommission.Equal(one.DirectCommission.Mul(decimal.NewFromInt(2))))
	assert.True(t, one.CommissionRate.Equal(two.CommissionRate))
	assert.True(t, two.CommissionRate.Equal(dec("7.5")))
}

func TestComputePayoutOverrideScope(t *testing.T) {
	agents := []models.Agent{
		{ID: "M", CommissionRate: pct("10"), ExperienceLevel: constants.ExperienceLevelMentor},
		{ID: "T1", ParentAgentID: "M", ExperienceLevel: constants.ExperienceLevelTrainee},
		{ID: "T2", ParentAgentID: "T1", ExperienceLevel: constants.ExperienceLevelTrainee},
	}
	clients := []models.Client{
		{ID: "C-T1", AssignedAgentID: "T1"},
		{ID: "C-T2", AssignedAgentID: "T2"},
	}
	payments := []models.Payment{
		paymentOf("C-T1", "T1", "1000", 1, day(2024, time.June, 3)),
		paymentOf("C-T2", "T2", "5000", 1, day(2024, time.June, 4)),
	}
	h := ResolveHierarchy(agents, clients, "M")

	got, err := ComputePayout(&agents[0], NewMonthWindow(2024, time.June, time.UTC), payments, h, constants.AttributionPaymentTime)
	require.NoError(t, err)
	assert.True(t, got.NetworkRevenue.Equal(dec("1000")), got.NetworkRevenue.String())
	assert.True(t, got.OverrideCommission.Equal(dec("50")), got.OverrideCommission.String())
	assert.Equal(t, 1, got.NetworkPaymentCount)
}

func TestComputePayoutWindowBoundaries(t *testing.T) {
	agent := models.Agent{ID: "A", CommissionRate: pct("10")}
	clients := []models.Client{{ID: "C1", AssignedAgentID: "A"}}
	window := NewMonthWindow(2024, time.February, time.UTC)
	payments := []models.Payment{
		paymentOf("C1", "A", "100", 1, window.Start),
		paymentOf("C1", "A", "100", 1, window.End),
		paymentOf("C1", "A", "100", 1, window.Start.Add(-time.Second)),
	}
	h := ResolveHierarchy([]models.Agent{agent}, clients, "A")

	got, err := ComputePayout(&agent, window, payments, h, constants.AttributionPaymentTime)
	require.NoError(t, err)
	assert.True(t, got.DirectRevenue.Equal(dec("100")))
}

func TestComputePayoutNoPaymentsYieldsFixedPay(t *testing.T) {
	agent := models.Agent{ID: "A", CommissionRate: pct("10"), BaseSalary: money("800"), PerformanceBonus: money("50")}
	got, err := ComputePayout(&agent, NewMonthWindow(2024, time.July, time.UTC), nil, Hierarchy{}, "")
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(dec("850")))
}

func TestComputePayoutUnknownAgentFailsClosed(t *testing.T) {
	got, err := ComputePayout(nil, NewMonthWindow(2024, time.July, time.UTC), nil, Hierarchy{}, "")
	require.ErrorIs(t, err, ErrInvalidAgentReference)
	assert.True(t, got.Total.IsZero())
}

func TestComputePayoutNegativeInputsCoercedToZero(t *testing.T) {
	agent := models.Agent{ID: "A", CommissionRate: pct("-10"), BaseSalary: money("-1")}
	clients := []models.Client{{ID: "C1", AssignedAgentID: "A"}}
	payments := []models.Payment{paymentOf("C1", "A", "-500", 0, day(2024, time.July, 1))}
	h := ResolveHierarchy([]models.Agent{agent}, clients, "A")

	got, err := ComputePayout(&agent, NewMonthWindow(2024, time.July, time.UTC), payments, h, "")
	require.NoError(t, err)
	assert.False(t, got.Total.IsNegative())
	assert.True(t, got.Total.IsZero())
}

func TestComputePayoutAttributionPolicies(t *testing.T) {
	agents := []models.Agent{
		{ID: "A", CommissionRate: pct("10")},
		{ID: "B", CommissionRate: pct("10")},
	}
	// C1 在 3 月回款时由 A 服务，之后转给 B
	clients := []models.Client{{ID: "C1", AssignedAgentID: "B"}}
	payments := []models.Payment{paymentOf("C1", "A", "1000", 1, day(2024, time.March, 10))}
	window := NewMonthWindow(2024, time.March, time.UTC)

	hA := ResolveHierarchy(agents, clients, "A")
	hB := ResolveHierarchy(agents, clients, "B")

	frozenA, err := ComputePayout(&agents[0], window, payments, hA, constants.AttributionPaymentTime)
	require.NoError(t, err)
	frozenB, err := ComputePayout(&agents[1], window, payments, hB, constants.AttributionPaymentTime)
	require.NoError(t, err)
	assert.True(t, frozenA.DirectRevenue.Equal(dec("1000")))
	assert.True(t, frozenB.DirectRevenue.IsZero())

	legacyA, err := ComputePayout(&agents[0], window, payments, hA, constants.AttributionQueryTime)
	require.NoError(t, err)
	legacyB, err := ComputePayout(&agents[1], window, payments, hB, constants.AttributionQueryTime)
	require.NoError(t, err)
	assert.True(t, legacyA.DirectRevenue.IsZero())
	assert.True(t, legacyB.DirectRevenue.Equal(dec("1000")))
}

func TestNormalizeAttribution(t *testing.T) {
	assert.Equal(t, constants.AttributionPaymentTime, NormalizeAttribution(""))
	assert.Equal(t, constants.AttributionQueryTime, NormalizeAttribution(" Query_Time "))
	assert.Equal(t, constants.AttributionPaymentTime, NormalizeAttribution("unknown"))
}
