package provider

import (
	"github.com/fleetdesk/internal/authz"
	"github.com/fleetdesk/internal/cache"
	"github.com/fleetdesk/internal/config"
	"github.com/fleetdesk/internal/logger"
	"github.com/fleetdesk/internal/metrics"
	"github.com/fleetdesk/internal/models"
	"github.com/fleetdesk/internal/queue"
	"github.com/fleetdesk/internal/repository"
	"github.com/fleetdesk/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Metrics     *metrics.Metrics

	// Repositories
	AgentRepo        repository.AgentRepository
	ClientRepo       repository.ClientRepository
	PaymentRepo      repository.PaymentRepository
	ContractRepo     repository.ContractRepository
	ClaimRepo        repository.ClaimRepository
	YieldReserveRepo repository.YieldReserveRepository
	AgreementLogRepo repository.AgreementAuditLogRepository
	AuthzAuditRepo   repository.AuthzAuditLogRepository

	// Services
	AuthzService      *authz.Service
	AuthzAuditService *service.AuthzAuditService
	EarningsService   *service.EarningsService
	EquityService     *service.EquityService
	ClaimService      *service.ClaimService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端（未启用时为空操作客户端）
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Metrics:     m,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AgentRepo = repository.NewAgentRepository(db)
	c.ClientRepo = repository.NewClientRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.ContractRepo = repository.NewContractRepository(db)
	c.ClaimRepo = repository.NewClaimRepository(db)
	c.YieldReserveRepo = repository.NewYieldReserveRepository(db)
	c.AgreementLogRepo = repository.NewAgreementAuditLogRepository(db)
	c.AuthzAuditRepo = repository.NewAuthzAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditRepo)

	engineCfg := c.Config.Engine
	c.EarningsService = service.NewEarningsService(c.AgentRepo, c.ClientRepo, c.PaymentRepo, c.ContractRepo, engineCfg, c.Metrics)
	c.EquityService = service.NewEquityService(c.AgentRepo, c.PaymentRepo, c.YieldReserveRepo, c.AgreementLogRepo, c.QueueClient, engineCfg, c.Metrics)
	c.ClaimService = service.NewClaimService(models.DB, c.ClaimRepo, c.EarningsService, c.QueueClient, engineCfg, c.Metrics)
}
