package repository

import "time"

// AgentListFilter 查询业务员列表的过滤条件
type AgentListFilter struct {
	Page            int
	PageSize        int
	Role            string
	ExperienceLevel string
	ParentAgentID   string
	Keyword         string
}

// PaymentListFilter 查询回款列表的过滤条件
type PaymentListFilter struct {
	Page     int
	PageSize int
	ClientID string
	AgentID  string
	PaidFrom *time.Time
	PaidTo   *time.Time
}

// ClaimListFilter 查询领取记录列表的过滤条件
type ClaimListFilter struct {
	Page       int
	PageSize   int
	AgentID    string
	Year       int
	MonthIndex *int
	OperatorID string
}

// AgreementAuditLogListFilter 查询协议审计日志列表的过滤条件
type AgreementAuditLogListFilter struct {
	Page        int
	PageSize    int
	AgentID     string
	OperatorID  string
	Action      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuthzAuditLogListFilter 查询权限审计日志列表的过滤条件
type AuthzAuditLogListFilter struct {
	Page             int
	PageSize         int
	OperatorID       string
	TargetOperatorID string
	Action           string
	Role             string
	Object           string
	Method           string
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
}
