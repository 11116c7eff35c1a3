package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/models"

	"github.com/shopspring/decimal"
)

// AgreementTermsPatch 协议条款变更，nil 字段表示不修改
type AgreementTermsPatch struct {
	Principal        *decimal.Decimal
	EquityShare      *decimal.Decimal
	PayoutModel      *string
	MaxMonthlyROI    *decimal.Decimal
	TermMonths       *int
	SmartYieldActive *bool
}

// agreementStatusTransitions 协议状态允许的流转
var agreementStatusTransitions = map[string][]string{
	"":                                    {constants.InvestmentStatusDraft, constants.InvestmentStatusUnderReview},
	constants.InvestmentStatusDraft:       {constants.InvestmentStatusUnderReview, constants.InvestmentStatusTerminated},
	constants.InvestmentStatusUnderReview: {constants.InvestmentStatusDraft, constants.InvestmentStatusActive, constants.InvestmentStatusTerminated},
	constants.InvestmentStatusActive:      {constants.InvestmentStatusCompleted, constants.InvestmentStatusTerminated},
}

// IsAgreementFrozen 协议生效（active）后经济条款冻结
func IsAgreementFrozen(agreement models.InvestmentAgreement) bool {
	return NormalizeInvestmentStatus(agreement.InvestmentStatus) == constants.InvestmentStatusActive
}

// NormalizeInvestmentStatus 归一化协议状态
func NormalizeInvestmentStatus(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// FrozenFieldsTouched 返回本次变更中会改动的冻结条款
func (p AgreementTermsPatch) FrozenFieldsTouched(current models.InvestmentAgreement) []string {
	fields := make([]string, 0, 4)
	if p.Principal != nil && !models.NewMoneyFromDecimal(*p.Principal).Equal(current.Principal.Decimal) {
		fields = append(fields, "principal")
	}
	if p.EquityShare != nil && !models.NewPercentFromDecimal(*p.EquityShare).Equal(current.EquityShare.Decimal) {
		fields = append(fields, "equity_share")
	}
	if p.PayoutModel != nil && NormalizePayoutModel(*p.PayoutModel) != NormalizePayoutModel(current.PayoutModel) {
		fields = append(fields, "payout_model")
	}
	if p.MaxMonthlyROI != nil && !models.NewPercentFromDecimal(*p.MaxMonthlyROI).Equal(current.MaxMonthlyROI.Decimal) {
		fields = append(fields, "max_monthly_roi")
	}
	return fields
}

// ApplyAgreementTerms 应用条款变更；协议生效期间改动冻结条款时原样返回并报错
func ApplyAgreementTerms(current models.InvestmentAgreement, patch AgreementTermsPatch) (models.InvestmentAgreement, error) {
	if IsAgreementFrozen(current) {
		if touched := patch.FrozenFieldsTouched(current); len(touched) > 0 {
			return current, fmt.Errorf("%w: %s", ErrFrozenAgreementMutation, strings.Join(touched, ","))
		}
	}

	next := current
	if patch.Principal != nil {
		if patch.Principal.IsNegative() {
			return current, fmt.Errorf("%w: principal must not be negative", ErrAgreementTermsInvalid)
		}
		next.Principal = models.NewMoneyFromDecimal(*patch.Principal)
	}
	if patch.EquityShare != nil {
		if patch.EquityShare.IsNegative() || patch.EquityShare.GreaterThan(hundred) {
			return current, fmt.Errorf("%w: equity share must be within 0-100", ErrAgreementTermsInvalid)
		}
		next.EquityShare = models.NewPercentFromDecimal(*patch.EquityShare)
	}
	if patch.PayoutModel != nil {
		next.PayoutModel = NormalizePayoutModel(*patch.PayoutModel)
	}
	if patch.MaxMonthlyROI != nil {
		if patch.MaxMonthlyROI.IsNegative() || patch.MaxMonthlyROI.GreaterThan(hundred) {
			return current, fmt.Errorf("%w: max monthly roi must be within 0-100", ErrAgreementTermsInvalid)
		}
		next.MaxMonthlyROI = models.NewPercentFromDecimal(*patch.MaxMonthlyROI)
	}
	if patch.TermMonths != nil {
		if *patch.TermMonths < 0 {
			return current, fmt.Errorf("%w: term months must not be negative", ErrAgreementTermsInvalid)
		}
		next.TermMonths = *patch.TermMonths
	}
	if patch.SmartYieldActive != nil {
		next.SmartYieldActive = *patch.SmartYieldActive
	}
	return next, nil
}

// TransitionAgreementStatus 协议状态流转，进入 active 时记录生效时间
func TransitionAgreementStatus(current models.InvestmentAgreement, rawNext string, now time.Time) (models.InvestmentAgreement, error) {
	from := NormalizeInvestmentStatus(current.InvestmentStatus)
	to := NormalizeInvestmentStatus(rawNext)
	if from == to {
		return current, nil
	}
	allowed := false
	for _, candidate := range agreementStatusTransitions[from] {
		if candidate == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return current, fmt.Errorf("%w: %s -> %s", ErrAgreementStatusInvalid, from, to)
	}
	next := current
	next.InvestmentStatus = to
	if to == constants.InvestmentStatusActive {
		activatedAt := now
		next.ActivatedAt = &activatedAt
	}
	return next, nil
}
