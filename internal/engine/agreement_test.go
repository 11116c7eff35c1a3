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

func activeAgreement() models.InvestmentAgreement {
	return models.InvestmentAgreement{
		Principal:        money("10000"),
		EquityShare:      pct("10"),
		MaxMonthlyROI:    pct("5"),
		TermMonths:       12,
		PayoutModel:      constants.PayoutModelInterestOnly,
		SmartYieldActive: true,
		InvestmentStatus: constants.InvestmentStatusActive,
	}
}

func TestApplyAgreementTermsFrozenWhileActive(t *testing.T) {
	current := activeAgreement()
	share := decimal.NewFromInt(20)

	got, err := ApplyAgreementTerms(current, AgreementTermsPatch{EquityShare: &share})
	require.ErrorIs(t, err, ErrFrozenAgreementMutation)
	assert.True(t, got.EquityShare.Equal(dec("10")))
	assert.Equal(t, current, got)
}

func TestApplyAgreementTermsSameValueAllowedWhileActive(t *testing.T) {
	current := activeAgreement()
	share := decimal.NewFromInt(10)
	model := " INTEREST_ONLY "
	term := 24

	got, err := ApplyAgreementTerms(current, AgreementTermsPatch{EquityShare: &share, PayoutModel: &model, TermMonths: &term})
	require.NoError(t, err)
	assert.Equal(t, 24, got.TermMonths)
	assert.Equal(t, constants.PayoutModelInterestOnly, got.PayoutModel)
}

func TestApplyAgreementTermsDraftIsMutable(t *testing.T) {
	current := activeAgreement()
	current.InvestmentStatus = constants.InvestmentStatusDraft
	principal := decimal.NewFromInt(20000)
	roi := decimal.RequireFromString("7.5")

	got, err := ApplyAgreementTerms(current, AgreementTermsPatch{Principal: &principal, MaxMonthlyROI: &roi})
	require.NoError(t, err)
	assert.True(t, got.Principal.Equal(dec("20000")))
	assert.True(t, got.MaxMonthlyROI.Equal(dec("7.5")))
}

func TestApplyAgreementTermsRejectsOutOfRange(t *testing.T) {
	current := models.InvestmentAgreement{InvestmentStatus: constants.InvestmentStatusDraft}
	share := decimal.NewFromInt(101)
	_, err := ApplyAgreementTerms(current, AgreementTermsPatch{EquityShare: &share})
	require.ErrorIs(t, err, ErrAgreementTermsInvalid)

	negative := decimal.NewFromInt(-1)
	_, err = ApplyAgreementTerms(current, AgreementTermsPatch{Principal: &negative})
	require.ErrorIs(t, err, ErrAgreementTermsInvalid)
}

func TestTransitionAgreementStatus(t *testing.T) {
	now := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	agreement := models.InvestmentAgreement{InvestmentStatus: constants.InvestmentStatusUnderReview}

	active, err := TransitionAgreementStatus(agreement, "ACTIVE", now)
	require.NoError(t, err)
	assert.Equal(t, constants.InvestmentStatusActive, active.InvestmentStatus)
	require.NotNil(t, active.ActivatedAt)
	assert.True(t, active.ActivatedAt.Equal(now))
	assert.True(t, IsAgreementFrozen(active))

	_, err = TransitionAgreementStatus(active, constants.InvestmentStatusDraft, now)
	require.ErrorIs(t, err, ErrAgreementStatusInvalid)

	done, err := TransitionAgreementStatus(active, constants.InvestmentStatusCompleted, now)
	require.NoError(t, err)
	assert.False(t, IsAgreementFrozen(done))

	_, err = TransitionAgreementStatus(done, constants.InvestmentStatusActive, now)
	require.ErrorIs(t, err, ErrAgreementStatusInvalid)
}

func TestApplyAgreementTermsKeepsFractionalPercent(t *testing.T) {
	current := activeAgreement()
	current.EquityShare = pct("12.345")
	share := decimal.RequireFromString("12.345")

	_, err := ApplyAgreementTerms(current, AgreementTermsPatch{EquityShare: &share})
	require.NoError(t, err)

	current.InvestmentStatus = constants.InvestmentStatusDraft
	roi := decimal.RequireFromString("4.125")
	got, err := ApplyAgreementTerms(current, AgreementTermsPatch{MaxMonthlyROI: &roi})
	require.NoError(t, err)
	assert.Equal(t, "4.125", got.MaxMonthlyROI.String())
}
