package service

import "errors"

var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("not found")
	// ErrAgentNotFound 业务员不存在
	ErrAgentNotFound = errors.New("agent not found")
	// ErrNotPartner 业务员不是合伙人
	ErrNotPartner = errors.New("agent is not a partner")
	// ErrAgreementInvalid 协议条款参数非法
	ErrAgreementInvalid = errors.New("agreement terms invalid")
	// ErrAgreementFrozen 协议生效期间不可修改经济条款
	ErrAgreementFrozen = errors.New("agreement terms frozen")
	// ErrAgreementStatusInvalid 协议状态流转非法
	ErrAgreementStatusInvalid = errors.New("agreement status invalid")
	// ErrPeriodInvalid 统计周期非法
	ErrPeriodInvalid = errors.New("period invalid")
	// ErrYieldInputInvalid 收益测算参数非法
	ErrYieldInputInvalid = errors.New("yield input invalid")
	// ErrSettlementInvalid 结算周期非法
	ErrSettlementInvalid = errors.New("settlement period invalid")
	// ErrSettlementOutOfOrder 结算月份早于已结算月份，储备金只能按月顺序滚存
	ErrSettlementOutOfOrder = errors.New("settlement month out of order")
	// ErrClaimWindowInvalid 领取周期非法
	ErrClaimWindowInvalid = errors.New("claim window invalid")
	// ErrClaimDuplicate 当月已领取
	ErrClaimDuplicate = errors.New("payout already claimed")
	// ErrClaimInProgress 领取处理中
	ErrClaimInProgress = errors.New("payout claim in progress")
	// ErrQueueUnavailable 队列不可用
	ErrQueueUnavailable = errors.New("queue unavailable")
)
