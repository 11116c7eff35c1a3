package repository

import (
	"errors"

	"github.com/fleetdesk/internal/models"

	"gorm.io/gorm"
)

// YieldReserveRepository 收益储备金台账数据访问接口
type YieldReserveRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) YieldReserveRepository

	GetByPeriod(agentID string, year, month int) (*models.YieldReserveEntry, error)
	GetLatestBefore(agentID string, year, month int) (*models.YieldReserveEntry, error)
	GetLatest(agentID string) (*models.YieldReserveEntry, error)
	Create(entry *models.YieldReserveEntry) error
	ListByAgent(agentID string, page, pageSize int) ([]models.YieldReserveEntry, int64, error)
}

// GormYieldReserveRepository GORM 实现
type GormYieldReserveRepository struct {
	db *gorm.DB
}

// NewYieldReserveRepository 创建储备金台账仓库
func NewYieldReserveRepository(db *gorm.DB) *GormYieldReserveRepository {
	return &GormYieldReserveRepository{db: db}
}

// WithTx 绑定事务
func (r *GormYieldReserveRepository) WithTx(tx *gorm.DB) YieldReserveRepository {
	if tx == nil {
		return r
	}
	return &GormYieldReserveRepository{db: tx}
}

// Transaction 执行事务
func (r *GormYieldReserveRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByPeriod 获取指定月份的结算记录
func (r *GormYieldReserveRepository) GetByPeriod(agentID string, year, month int) (*models.YieldReserveEntry, error) {
	normalized := normalizeIDArg(agentID)
	if normalized == "" {
		return nil, nil
	}
	var entry models.YieldReserveEntry
	err := r.db.
		Where(normalizedIDExpr("agent_id")+" = ?", normalized).
		Where("year = ? AND month = ?", year, month).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// GetLatestBefore 获取指定月份之前最近一次结算记录，用于承接期初余额
func (r *GormYieldReserveRepository) GetLatestBefore(agentID string, year, month int) (*models.YieldReserveEntry, error) {
	normalized := normalizeIDArg(agentID)
	if normalized == "" {
		return nil, nil
	}
	var entry models.YieldReserveEntry
	err := r.db.
		Where(normalizedIDExpr("agent_id")+" = ?", normalized).
		Where("((year < ?) OR (year = ? AND month < ?))", year, year, month).
		Order("year desc, month desc").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// GetLatest 获取合伙人最近一个结算月份的记录
func (r *GormYieldReserveRepository) GetLatest(agentID string) (*models.YieldReserveEntry, error) {
	normalized := normalizeIDArg(agentID)
	if normalized == "" {
		return nil, nil
	}
	var entry models.YieldReserveEntry
	err := r.db.
		Where(normalizedIDExpr("agent_id")+" = ?", normalized).
		Order("year desc, month desc").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// Create 写入结算记录
func (r *GormYieldReserveRepository) Create(entry *models.YieldReserveEntry) error {
	if entry == nil {
		return nil
	}
	return r.db.Create(entry).Error
}

// ListByAgent 分页查询合伙人的储备金台账
func (r *GormYieldReserveRepository) ListByAgent(agentID string, page, pageSize int) ([]models.YieldReserveEntry, int64, error) {
	normalized := normalizeIDArg(agentID)
	if normalized == "" {
		return []models.YieldReserveEntry{}, 0, nil
	}
	query := r.db.Model(&models.YieldReserveEntry{}).Where(normalizedIDExpr("agent_id")+" = ?", normalized)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, page, pageSize)

	entries := make([]models.YieldReserveEntry, 0)
	if err := query.Order("year desc, month desc").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
