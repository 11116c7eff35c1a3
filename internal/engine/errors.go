package engine

import "errors"

var (
	// ErrInvalidAgentReference 业务员编号不存在
	ErrInvalidAgentReference = errors.New("invalid agent reference")
	// ErrFrozenAgreementMutation 协议生效后禁止修改经济条款
	ErrFrozenAgreementMutation = errors.New("agreement terms are frozen while active")
	// ErrDuplicateClaim 同一业务员同月重复领取
	ErrDuplicateClaim = errors.New("duplicate payout claim")
	// ErrAgreementTermsInvalid 协议条款非法
	ErrAgreementTermsInvalid = errors.New("agreement terms invalid")
	// ErrAgreementStatusInvalid 协议状态流转非法
	ErrAgreementStatusInvalid = errors.New("agreement status transition invalid")
	// ErrClaimPeriodInvalid 领取周期非法
	ErrClaimPeriodInvalid = errors.New("claim period invalid")
	// ErrClaimStoreUnavailable 领取记录存储不可用
	ErrClaimStoreUnavailable = errors.New("claim store unavailable")
)
