package models

import (
	"time"

	"gorm.io/gorm"
)

// Client 车队客户
type Client struct {
	ID              string         `gorm:"primarykey;type:varchar(64)" json:"id"`                               // 客户编号
	Name            string         `gorm:"type:varchar(255);not null;default:''" json:"name"`                   // 客户名称
	AssignedAgentID string         `gorm:"type:varchar(64);not null;default:'';index" json:"assigned_agent_id"` // 归属业务员（可为空）
	OnboardingDate  *time.Time     `gorm:"index" json:"onboarding_date,omitempty"`                              // 签约日期
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                             // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                             // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                      // 软删除时间
}

// TableName 指定表名
func (Client) TableName() string {
	return "clients"
}
