package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/fleetdesk/internal/models"

	"gorm.io/gorm"
)

// ErrClaimRecordExists 领取凭证已存在
var ErrClaimRecordExists = errors.New("claim record already exists")

// ClaimRepository 领取记录数据访问接口
type ClaimRepository interface {
	WithTx(tx *gorm.DB) ClaimRepository
	ClaimExists(ctx context.Context, claimID string) (bool, error)
	GetByID(ctx context.Context, claimID string) (*models.ClaimRecord, error)
	Create(ctx context.Context, record *models.ClaimRecord) error
	List(ctx context.Context, filter ClaimListFilter) ([]models.ClaimRecord, int64, error)
}

// GormClaimRepository GORM 实现
type GormClaimRepository struct {
	db *gorm.DB
}

// NewClaimRepository 创建领取记录仓库
func NewClaimRepository(db *gorm.DB) *GormClaimRepository {
	return &GormClaimRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClaimRepository) WithTx(tx *gorm.DB) ClaimRepository {
	if tx == nil {
		return r
	}
	return &GormClaimRepository{db: tx}
}

// ClaimExists 判断领取凭证是否存在（忽略大小写）
func (r *GormClaimRepository) ClaimExists(ctx context.Context, claimID string) (bool, error) {
	normalized := normalizeIDArg(claimID)
	if normalized == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ClaimRecord{}).
		Where(normalizedIDExpr("id")+" = ?", normalized).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByID 按凭证编号获取领取记录
func (r *GormClaimRepository) GetByID(ctx context.Context, claimID string) (*models.ClaimRecord, error) {
	normalized := normalizeIDArg(claimID)
	if normalized == "" {
		return nil, nil
	}
	var record models.ClaimRecord
	if err := r.db.WithContext(ctx).Where(normalizedIDExpr("id")+" = ?", normalized).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Create 写入领取记录，凭证冲突时返回 ErrClaimRecordExists
func (r *GormClaimRepository) Create(ctx context.Context, record *models.ClaimRecord) error {
	if record == nil {
		return nil
	}
	record.ID = strings.TrimSpace(record.ID)
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrClaimRecordExists
		}
		return err
	}
	return nil
}

// List 分页查询领取记录
func (r *GormClaimRepository) List(ctx context.Context, filter ClaimListFilter) ([]models.ClaimRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ClaimRecord{})
	if agentID := normalizeIDArg(filter.AgentID); agentID != "" {
		query = query.Where(normalizedIDExpr("agent_id")+" = ?", agentID)
	}
	if filter.Year > 0 {
		query = query.Where("year = ?", filter.Year)
	}
	if filter.MonthIndex != nil {
		query = query.Where("month_index = ?", *filter.MonthIndex)
	}
	if operatorID := normalizeIDArg(filter.OperatorID); operatorID != "" {
		query = query.Where(normalizedIDExpr("operator_id")+" = ?", operatorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	records := make([]models.ClaimRecord, 0)
	if err := query.Order("claimed_at desc, id asc").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
