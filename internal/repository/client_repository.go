package repository

import (
	"errors"

	"github.com/fleetdesk/internal/models"

	"gorm.io/gorm"
)

// ClientRepository 客户数据访问接口
type ClientRepository interface {
	GetByID(id string) (*models.Client, error)
	ListAll() ([]models.Client, error)
	ListByAgentIDs(agentIDs []string) ([]models.Client, error)
	Create(client *models.Client) error
}

// GormClientRepository GORM 实现
type GormClientRepository struct {
	db *gorm.DB
}

// NewClientRepository 创建客户仓库
func NewClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// GetByID 按编号获取客户
func (r *GormClientRepository) GetByID(id string) (*models.Client, error) {
	normalized := normalizeIDArg(id)
	if normalized == "" {
		return nil, nil
	}
	var client models.Client
	if err := r.db.Where(normalizedIDExpr("id")+" = ?", normalized).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

// ListAll 获取全部客户快照
func (r *GormClientRepository) ListAll() ([]models.Client, error) {
	clients := make([]models.Client, 0)
	if err := r.db.Order("id asc").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// ListByAgentIDs 按当前归属业务员查询客户
func (r *GormClientRepository) ListByAgentIDs(agentIDs []string) ([]models.Client, error) {
	normalized := make([]string, 0, len(agentIDs))
	for _, id := range agentIDs {
		if n := normalizeIDArg(id); n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) == 0 {
		return []models.Client{}, nil
	}
	clients := make([]models.Client, 0)
	if err := r.db.Where(normalizedIDExpr("assigned_agent_id")+" IN ?", normalized).
		Order("id asc").
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// Create 创建客户
func (r *GormClientRepository) Create(client *models.Client) error {
	if client == nil {
		return nil
	}
	return r.db.Create(client).Error
}
