package models

import "time"

// AgreementAuditLog 投资协议变更审计日志
// 说明：记录条款修改、状态流转以及被拒绝的冻结条款修改尝试。
type AgreementAuditLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	AgentID    string    `gorm:"type:varchar(64);index;not null" json:"agent_id"`
	OperatorID string    `gorm:"type:varchar(64);index;not null;default:''" json:"operator_id"`
	Action     string    `gorm:"type:varchar(64);index;not null" json:"action"`
	FromStatus string    `gorm:"type:varchar(20);not null;default:''" json:"from_status"`
	ToStatus   string    `gorm:"type:varchar(20);not null;default:''" json:"to_status"`
	Rejected   bool      `gorm:"not null;default:false" json:"rejected"`
	RequestID  string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	DetailJSON JSON      `gorm:"type:json" json:"detail"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AgreementAuditLog) TableName() string {
	return "agreement_audit_logs"
}
