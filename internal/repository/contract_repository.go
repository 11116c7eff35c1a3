package repository

import (
	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/models"

	"gorm.io/gorm"
)

// ContractRepository 合同数据访问接口
type ContractRepository interface {
	Create(contract *models.Contract) error
	CountActiveByClients(clientIDs []string) (int64, error)
	ListByClient(clientID string) ([]models.Contract, error)
}

// GormContractRepository GORM 实现
type GormContractRepository struct {
	db *gorm.DB
}

// NewContractRepository 创建合同仓库
func NewContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// Create 创建合同
func (r *GormContractRepository) Create(contract *models.Contract) error {
	if contract == nil {
		return nil
	}
	return r.db.Create(contract).Error
}

// CountActiveByClients 统计一组客户名下的有效合同数
func (r *GormContractRepository) CountActiveByClients(clientIDs []string) (int64, error) {
	normalized := make([]string, 0, len(clientIDs))
	for _, id := range clientIDs {
		if n := normalizeIDArg(id); n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.Contract{}).
		Where(normalizedIDExpr("client_id")+" IN ?", normalized).
		Where("status = ?", constants.ContractStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByClient 查询客户的全部合同
func (r *GormContractRepository) ListByClient(clientID string) ([]models.Contract, error) {
	normalized := normalizeIDArg(clientID)
	if normalized == "" {
		return []models.Contract{}, nil
	}
	contracts := make([]models.Contract, 0)
	if err := r.db.Where(normalizedIDExpr("client_id")+" = ?", normalized).
		Order("start_date desc, id desc").
		Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}
