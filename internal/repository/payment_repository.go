package repository

import (
	"strings"
	"time"

	"github.com/fleetdesk/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentRepository 回款数据访问接口
type PaymentRepository interface {
	Create(payment *models.Payment) error
	ListInRange(from, to time.Time) ([]models.Payment, error)
	ListAdmin(filter PaymentListFilter) ([]models.Payment, int64, error)
	SumInRange(from, to time.Time) (decimal.Decimal, error)
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建回款仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create 创建回款记录
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	if payment == nil {
		return nil
	}
	return r.db.Create(payment).Error
}

// ListInRange 查询 [from, to) 区间内的回款
func (r *GormPaymentRepository) ListInRange(from, to time.Time) ([]models.Payment, error) {
	payments := make([]models.Payment, 0)
	if err := r.db.
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Order("paid_at asc, id asc").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// SumInRange 统计 [from, to) 区间内回款原始金额合计
func (r *GormPaymentRepository) SumInRange(from, to time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.NullDecimal
	}
	if err := r.db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal.Round(2), nil
}

// ListAdmin 管理端查询回款列表
func (r *GormPaymentRepository) ListAdmin(filter PaymentListFilter) ([]models.Payment, int64, error) {
	query := r.db.Model(&models.Payment{})
	if clientID := normalizeIDArg(filter.ClientID); clientID != "" {
		query = query.Where(normalizedIDExpr("client_id")+" = ?", clientID)
	}
	if agentID := strings.TrimSpace(filter.AgentID); agentID != "" {
		query = query.Where(normalizedIDExpr("agent_id")+" = ?", normalizeIDArg(agentID))
	}
	if filter.PaidFrom != nil {
		query = query.Where("paid_at >= ?", *filter.PaidFrom)
	}
	if filter.PaidTo != nil {
		query = query.Where("paid_at < ?", *filter.PaidTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	payments := make([]models.Payment, 0)
	if err := query.Order("paid_at desc, id desc").Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}
