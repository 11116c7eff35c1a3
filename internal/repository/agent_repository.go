package repository

import (
	"errors"
	"strings"

	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AgentRepository 业务员数据访问接口
type AgentRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) AgentRepository

	GetByID(id string) (*models.Agent, error)
	GetByIDForUpdate(id string) (*models.Agent, error)
	ListAll() ([]models.Agent, error)
	List(filter AgentListFilter) ([]models.Agent, int64, error)
	ListActivePartners() ([]models.Agent, error)
	Create(agent *models.Agent) error
	UpdateAgreement(id string, agreement models.InvestmentAgreement) error
}

// GormAgentRepository GORM 业务员仓储
type GormAgentRepository struct {
	db *gorm.DB
}

// NewAgentRepository 创建业务员仓储
func NewAgentRepository(db *gorm.DB) *GormAgentRepository {
	return &GormAgentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAgentRepository) WithTx(tx *gorm.DB) AgentRepository {
	if tx == nil {
		return r
	}
	return &GormAgentRepository{db: tx}
}

// Transaction 执行事务
func (r *GormAgentRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按编号获取业务员（忽略大小写）
func (r *GormAgentRepository) GetByID(id string) (*models.Agent, error) {
	return r.getByID(r.db, id)
}

// GetByIDForUpdate 按编号获取业务员并加锁
func (r *GormAgentRepository) GetByIDForUpdate(id string) (*models.Agent, error) {
	return r.getByID(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormAgentRepository) getByID(query *gorm.DB, id string) (*models.Agent, error) {
	normalized := normalizeIDArg(id)
	if normalized == "" {
		return nil, nil
	}
	var agent models.Agent
	if err := query.Where(normalizedIDExpr("id")+" = ?", normalized).First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

// ListAll 获取全部业务员快照
func (r *GormAgentRepository) ListAll() ([]models.Agent, error) {
	agents := make([]models.Agent, 0)
	if err := r.db.Order("id asc").Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

// List 分页查询业务员
func (r *GormAgentRepository) List(filter AgentListFilter) ([]models.Agent, int64, error) {
	query := r.db.Model(&models.Agent{})
	if role := strings.TrimSpace(filter.Role); role != "" {
		query = query.Where("role = ?", strings.ToLower(role))
	}
	if level := strings.TrimSpace(filter.ExperienceLevel); level != "" {
		query = query.Where("LOWER(experience_level) = ?", strings.ToLower(level))
	}
	if parent := normalizeIDArg(filter.ParentAgentID); parent != "" {
		query = query.Where(normalizedIDExpr("parent_agent_id")+" = ?", parent)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"id", "name"})
		query = query.Where("("+condition+")", repeatLikeArgs("%"+keyword+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	agents := make([]models.Agent, 0)
	if err := query.Order("id asc").Find(&agents).Error; err != nil {
		return nil, 0, err
	}
	return agents, total, nil
}

// ListActivePartners 获取协议生效中的合伙人
func (r *GormAgentRepository) ListActivePartners() ([]models.Agent, error) {
	agents := make([]models.Agent, 0)
	if err := r.db.
		Where("role = ?", constants.AgentRolePartner).
		Where("LOWER(agreement_investment_status) = ?", constants.InvestmentStatusActive).
		Order("id asc").
		Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

// Create 创建业务员
func (r *GormAgentRepository) Create(agent *models.Agent) error {
	if agent == nil {
		return nil
	}
	return r.db.Create(agent).Error
}

// UpdateAgreement 整体覆盖投资协议字段
func (r *GormAgentRepository) UpdateAgreement(id string, agreement models.InvestmentAgreement) error {
	normalized := normalizeIDArg(id)
	if normalized == "" {
		return nil
	}
	return r.db.Model(&models.Agent{}).
		Where(normalizedIDExpr("id")+" = ?", normalized).
		Updates(map[string]interface{}{
			"agreement_principal":          agreement.Principal,
			"agreement_equity_share":       agreement.EquityShare,
			"agreement_term_months":        agreement.TermMonths,
			"agreement_payout_model":       agreement.PayoutModel,
			"agreement_smart_yield_active": agreement.SmartYieldActive,
			"agreement_max_monthly_roi":    agreement.MaxMonthlyROI,
			"agreement_investment_status":  agreement.InvestmentStatus,
			"agreement_activated_at":       agreement.ActivatedAt,
		}).Error
}
