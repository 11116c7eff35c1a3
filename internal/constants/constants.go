package constants

// 人员角色常量
const (
	AgentRoleAdmin   = "admin"
	AgentRoleAgent   = "agent"
	AgentRolePartner = "partner"
	AgentRoleSupport = "support"
)

// 经验等级常量（按晋升顺序排列）
const (
	ExperienceLevelTrainee     = "trainee"
	ExperienceLevelIndependent = "independent"
	ExperienceLevelMentor      = "mentor"
	ExperienceLevelLead        = "lead"
	ExperienceLevelPartner     = "partner"
)

// ExperienceLevelLadder 经验等级阶梯
var ExperienceLevelLadder = []string{
	ExperienceLevelTrainee,
	ExperienceLevelIndependent,
	ExperienceLevelMentor,
	ExperienceLevelLead,
	ExperienceLevelPartner,
}

// 投资协议回款模式常量
const (
	PayoutModelInterestOnly          = "interest_only"
	PayoutModelPrincipalPlusInterest = "principal_plus_interest"
)

// 投资协议状态常量
const (
	InvestmentStatusDraft       = "draft"
	InvestmentStatusUnderReview = "under_review"
	InvestmentStatusActive      = "active"
	InvestmentStatusCompleted   = "completed"
	InvestmentStatusTerminated  = "terminated"
)

// 佣金归属口径常量
const (
	AttributionPaymentTime = "payment_time"
	AttributionQueryTime   = "query_time"
)

// 合同状态常量
const (
	ContractStatusActive    = "active"
	ContractStatusSuspended = "suspended"
	ContractStatusEnded     = "ended"
)

// 队列常量
const (
	QueueDefault            = "default"
	QueueCritical           = "critical"
	TaskYieldSettlement     = "yield:monthly_settlement"
	TaskPayoutClaimRecorded = "payout:claim_recorded"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "fd"
)

// 时区默认值
const (
	EngineTimezoneDefault = "UTC"
)

// 协议审计动作常量
const (
	AgreementAuditActionTermsUpdated   = "agreement_terms_updated"
	AgreementAuditActionTermsRejected  = "agreement_terms_rejected"
	AgreementAuditActionStatusChanged  = "agreement_status_changed"
	AgreementAuditActionStatusRejected = "agreement_status_rejected"
)
