package models

import "time"

// ClaimRecord 月度提成领取记录（幂等凭证）
type ClaimRecord struct {
	ID                 string    `gorm:"primarykey;type:varchar(160)" json:"id"`                           // 领取凭证 CLAIM-{agentId}-{month}-{year}
	AgentID            string    `gorm:"type:varchar(64);not null;index" json:"agent_id"`                  // 业务员编号
	MonthIndex         int       `gorm:"not null" json:"month_index"`                                      // 月份（0 起）
	Year               int       `gorm:"not null;index" json:"year"`                                       // 年份
	DirectCommission   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"direct_commission"`   // 直属佣金
	OverrideCommission Money     `gorm:"type:decimal(20,2);not null;default:0" json:"override_commission"` // 团队管理津贴
	BaseSalary         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"base_salary"`         // 底薪
	PerformanceBonus   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"performance_bonus"`   // 绩效奖金
	TotalPayout        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_payout"`        // 合计发放
	OperatorID         string    `gorm:"type:varchar(64);not null;default:''" json:"operator_id"`          // 操作人
	ClaimedAt          time.Time `gorm:"index;not null" json:"claimed_at"`                                 // 领取时间
	CreatedAt          time.Time `gorm:"index" json:"created_at"`                                          // 创建时间
}

// TableName 指定表名
func (ClaimRecord) TableName() string {
	return "claim_records"
}
