package repository

import (
	"strings"

	"github.com/fleetdesk/internal/models"

	"gorm.io/gorm"
)

// AgreementAuditLogRepository 协议审计日志数据访问接口
type AgreementAuditLogRepository interface {
	WithTx(tx *gorm.DB) AgreementAuditLogRepository
	Create(log *models.AgreementAuditLog) error
	ListAdmin(filter AgreementAuditLogListFilter) ([]models.AgreementAuditLog, int64, error)
}

// GormAgreementAuditLogRepository GORM 实现
type GormAgreementAuditLogRepository struct {
	db *gorm.DB
}

// NewAgreementAuditLogRepository 创建协议审计日志仓库
func NewAgreementAuditLogRepository(db *gorm.DB) *GormAgreementAuditLogRepository {
	return &GormAgreementAuditLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAgreementAuditLogRepository) WithTx(tx *gorm.DB) AgreementAuditLogRepository {
	if tx == nil {
		return r
	}
	return &GormAgreementAuditLogRepository{db: tx}
}

// Create 创建协议审计日志
func (r *GormAgreementAuditLogRepository) Create(log *models.AgreementAuditLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// ListAdmin 管理端查询协议审计日志
func (r *GormAgreementAuditLogRepository) ListAdmin(filter AgreementAuditLogListFilter) ([]models.AgreementAuditLog, int64, error) {
	query := r.db.Model(&models.AgreementAuditLog{})
	if agentID := normalizeIDArg(filter.AgentID); agentID != "" {
		query = query.Where(normalizedIDExpr("agent_id")+" = ?", agentID)
	}
	if operatorID := normalizeIDArg(filter.OperatorID); operatorID != "" {
		query = query.Where(normalizedIDExpr("operator_id")+" = ?", operatorID)
	}
	if action := strings.TrimSpace(filter.Action); action != "" {
		query = query.Where("action = ?", action)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	logs := make([]models.AgreementAuditLog, 0)
	if err := query.Order("id DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
