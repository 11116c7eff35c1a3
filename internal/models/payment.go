package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment 客户回款记录
type Payment struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                       // 主键
	PaymentNo     string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"payment_no"`    // 回款单号
	ClientID      string         `gorm:"type:varchar(64);not null;index" json:"client_id"`           // 客户编号
	AgentID       string         `gorm:"type:varchar(64);not null;default:'';index" json:"agent_id"` // 回款时的服务业务员
	Amount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`        // 回款金额
	MonthsCovered int            `gorm:"not null;default:1" json:"months_covered"`                   // 覆盖月数
	Date          time.Time      `gorm:"column:paid_at;index;not null" json:"date"`                  // 回款日期
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
