package models

import (
	"time"

	"gorm.io/gorm"
)

// Contract 客户服务合同
type Contract struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                     // 主键
	ContractNo   string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"contract_no"` // 合同编号
	ClientID     string         `gorm:"type:varchar(64);not null;index" json:"client_id"`         // 客户编号
	VehicleCount int            `gorm:"not null;default:0" json:"vehicle_count"`                  // 车辆数
	MonthlyFee   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"monthly_fee"` // 月服务费
	Status       string         `gorm:"type:varchar(20);not null;index" json:"status"`            // 合同状态
	StartDate    time.Time      `gorm:"index;not null" json:"start_date"`                         // 起始日期
	EndDate      *time.Time     `gorm:"index" json:"end_date,omitempty"`                          // 结束日期
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (Contract) TableName() string {
	return "contracts"
}
