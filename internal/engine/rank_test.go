package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directClients(agentID string, n int) Hierarchy {
	h := Hierarchy{AgentID: agentID}
	for i := 0; i < n; i++ {
		h.DirectClients = append(h.DirectClients, models.Client{ID: fmt.Sprintf("C%d", i), AssignedAgentID: agentID})
	}
	return h
}

func TestComputeRankProgressPartnershipEligibility(t *testing.T) {
	cases := []struct {
		name      string
		level     string
		portfolio int
		graduates int
		want      bool
	}{
		{name: "mentor via graduates", level: constants.ExperienceLevelMentor, portfolio: 30, graduates: 5, want: true},
		{name: "mentor small portfolio with graduates", level: constants.ExperienceLevelMentor, portfolio: 5, graduates: 5, want: true},
		{name: "mentor via portfolio", level: constants.ExperienceLevelMentor, portfolio: 50, graduates: 0, want: true},
		{name: "mentor short on both", level: constants.ExperienceLevelMentor, portfolio: 49, graduates: 4, want: false},
		{name: "lead via portfolio", level: constants.ExperienceLevelLead, portfolio: 55, graduates: 0, want: true},
		{name: "lead graduates do not count", level: constants.ExperienceLevelLead, portfolio: 10, graduates: 9, want: false},
		{name: "independent never applies", level: constants.ExperienceLevelIndependent, portfolio: 80, graduates: 9, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			agent := models.Agent{ID: "A", ExperienceLevel: tc.level, GraduatedTraineesCount: tc.graduates}
			got, err := ComputeRankProgress(&agent, directClients("A", tc.portfolio), time.Time{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.CanApplyForPartnership)
			assert.Equal(t, tc.portfolio, got.Portfolio)
		})
	}
}

func TestComputeRankProgressTracks(t *testing.T) {
	trainee := models.Agent{ID: "A", ExperienceLevel: constants.ExperienceLevelTrainee}
	got, err := ComputeRankProgress(&trainee, directClients("A", 5), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Road to Independent", got.Label)
	assert.Equal(t, IndependentPortfolioThreshold, got.Target)
	assert.InDelta(t, 50.0, got.Percentage, 0.001)
	assert.False(t, got.PromotionEligible)

	got, err = ComputeRankProgress(&trainee, directClients("A", 12), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Mentor track", got.Label)
	assert.True(t, got.PromotionEligible)
	assert.Equal(t, constants.ExperienceLevelIndependent, got.NextLevel)

	mentor := models.Agent{ID: "A", ExperienceLevel: constants.ExperienceLevelMentor}
	got, err = ComputeRankProgress(&mentor, directClients("A", 3), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Partner track", got.Label)
	assert.Equal(t, PartnerPortfolioThreshold, got.Target)
}

func TestComputeRankProgressPercentageCapped(t *testing.T) {
	agent := models.Agent{ID: "A", ExperienceLevel: constants.ExperienceLevelLead}
	got, err := ComputeRankProgress(&agent, directClients("A", 120), time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, got.Percentage, 0.001)
}

func TestComputeRankProgressUnknownLevelTreatedAsTrainee(t *testing.T) {
	agent := models.Agent{ID: "A", ExperienceLevel: "Wizard"}
	got, err := ComputeRankProgress(&agent, directClients("A", 1), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, constants.ExperienceLevelTrainee, got.CurrentLevel)
	assert.Equal(t, IndependentPortfolioThreshold, got.Target)
}

func TestComputeRankProgressPartnerIsTerminal(t *testing.T) {
	agent := models.Agent{ID: "A", ExperienceLevel: "PARTNER"}
	got, err := ComputeRankProgress(&agent, directClients("A", 2), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Partner", got.Label)
	assert.InDelta(t, 100.0, got.Percentage, 0.001)
	assert.False(t, got.CanApplyForPartnership)
}

func TestComputeRankProgressSkipsFutureOnboarding(t *testing.T) {
	asOf := day(2024, time.March, 31)
	future := day(2024, time.April, 2)
	past := day(2024, time.January, 2)
	h := Hierarchy{DirectClients: []models.Client{
		{ID: "C1", OnboardingDate: &past},
		{ID: "C2", OnboardingDate: &future},
		{ID: "C3"},
	}}
	agent := models.Agent{ID: "A"}

	got, err := ComputeRankProgress(&agent, h, asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Portfolio)
}

func TestComputeRankProgressUnknownAgent(t *testing.T) {
	got, err := ComputeRankProgress(nil, Hierarchy{}, time.Time{})
	require.ErrorIs(t, err, ErrInvalidAgentReference)
	assert.Equal(t, 0, got.Portfolio)
	assert.False(t, got.CanApplyForPartnership)
}
