package models

import (
	"strings"
	"time"

	"github.com/fleetdesk/internal/constants"

	"gorm.io/gorm"
)

// Agent 业务人员档案（销售、导师、合伙人等）
type Agent struct {
	ID                     string              `gorm:"primarykey;type:varchar(64)" json:"id"`                             // 业务编号，如 AGT-1
	Name                   string              `gorm:"type:varchar(128);not null;default:''" json:"name"`                 // 姓名
	Role                   string              `gorm:"type:varchar(20);not null;index" json:"role"`                       // 角色
	ParentAgentID          string              `gorm:"type:varchar(64);not null;default:'';index" json:"parent_agent_id"` // 上级导师编号（弱引用，可为空）
	ExperienceLevel        string              `gorm:"type:varchar(20);not null;default:''" json:"experience_level"`      // 经验等级
	CommissionRate         Percent             `gorm:"type:decimal(9,6);not null;default:0" json:"commission_rate"`       // 固定佣金比例（百分比）
	BaseSalary             Money               `gorm:"type:decimal(20,2);not null;default:0" json:"base_salary"`          // 底薪
	PerformanceBonus       Money               `gorm:"type:decimal(20,2);not null;default:0" json:"performance_bonus"`    // 绩效奖金
	GraduatedTraineesCount int                 `gorm:"not null;default:0" json:"graduated_trainees_count"`                // 已出师学员数
	Agreement              InvestmentAgreement `gorm:"embedded;embeddedPrefix:agreement_" json:"agreement"`               // 投资协议（仅合伙人）
	CreatedAt              time.Time           `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt              time.Time           `gorm:"index" json:"updated_at"`                                           // 更新时间
	DeletedAt              gorm.DeletedAt      `gorm:"index" json:"-"`                                                    // 软删除时间
}

// InvestmentAgreement 合伙人投资协议
type InvestmentAgreement struct {
	Principal        Money      `gorm:"type:decimal(20,2);not null;default:0" json:"principal"`              // 本金
	EquityShare      Percent    `gorm:"type:decimal(9,6);not null;default:0" json:"equity_share"`            // 权益比例（百分比）
	TermMonths       int        `gorm:"not null;default:0" json:"term_months"`                               // 期限（月）
	PayoutModel      string     `gorm:"type:varchar(32);not null;default:''" json:"payout_model"`            // 回款模式
	SmartYieldActive bool       `gorm:"not null;default:false" json:"smart_yield_active"`                    // 是否启用收益封顶
	MaxMonthlyROI    Percent    `gorm:"type:decimal(9,6);not null;default:0" json:"max_monthly_roi"`         // 月收益上限（占本金百分比）
	InvestmentStatus string     `gorm:"type:varchar(20);not null;default:'';index" json:"investment_status"` // 协议状态
	ActivatedAt      *time.Time `json:"activated_at,omitempty"`                                              // 生效时间
}

// TableName 指定表名
func (Agent) TableName() string {
	return "agents"
}

// IsPartner 是否为合伙人角色
func (a Agent) IsPartner() bool {
	return strings.EqualFold(strings.TrimSpace(a.Role), constants.AgentRolePartner)
}
