package models

import "time"

// YieldReserveEntry 合伙人收益平滑储备金台账（按月一条）
type YieldReserveEntry struct {
	ID                  uint      `gorm:"primarykey" json:"id"`                                                            // 主键
	AgentID             string    `gorm:"type:varchar(64);not null;index:idx_yield_reserve_period,unique" json:"agent_id"` // 合伙人编号
	Year                int       `gorm:"not null;index:idx_yield_reserve_period,unique" json:"year"`                      // 年份
	Month               int       `gorm:"not null;index:idx_yield_reserve_period,unique" json:"month"`                     // 月份（1-12）
	RevenuePool         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"revenue_pool"`                       // 当月收益池
	TheoreticalInterest Money     `gorm:"type:decimal(20,2);not null;default:0" json:"theoretical_interest"`               // 理论收益
	CapAmount           Money     `gorm:"type:decimal(20,2);not null;default:0" json:"cap_amount"`                         // 封顶金额
	PaidInterest        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"paid_interest"`                      // 实际发放收益
	PrincipalReturn     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"principal_return"`                   // 本金返还
	Banked              Money     `gorm:"type:decimal(20,2);not null;default:0" json:"banked"`                             // 存入储备
	Released            Money     `gorm:"type:decimal(20,2);not null;default:0" json:"released"`                           // 储备释放
	BalanceAfter        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance_after"`                      // 结算后余额
	CreatedAt           time.Time `gorm:"index" json:"created_at"`                                                         // 创建时间
}

// TableName 指定表名
func (YieldReserveEntry) TableName() string {
	return "yield_reserve_entries"
}
