package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fleetdesk/internal/authz"
	"github.com/fleetdesk/internal/cache"
	"github.com/fleetdesk/internal/config"
	"github.com/fleetdesk/internal/constants"
	adminhandlers "github.com/fleetdesk/internal/http/handlers/admin"
	"github.com/fleetdesk/internal/http/response"
	"github.com/fleetdesk/internal/logger"
	"github.com/fleetdesk/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	claimRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:claim", redisPrefix),
		WindowSeconds: cfg.Security.ClaimRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.ClaimRateLimit.MaxRequests,
		BlockSeconds:  cfg.Security.ClaimRateLimit.BlockSeconds,
	}
	settlementRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:settlement", redisPrefix),
		WindowSeconds: cfg.Security.ClaimRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.ClaimRateLimit.MaxRequests,
		BlockSeconds:  cfg.Security.ClaimRateLimit.BlockSeconds,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	r.Use(MetricsMiddleware(c.Metrics))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 管理端接口（需识别操作员并鉴权）
		admin := apiV1.Group("/admin")
		authorized := admin.Use(OperatorAuthMiddleware(c.AgentRepo), OperatorRBACMiddleware(c.AuthzService))
		{
			// 业务员与回款
			authorized.GET("/agents", adminHandler.ListAgents)
			authorized.GET("/payments", adminHandler.ListPayments)
			authorized.GET("/agents/:id/payout", adminHandler.GetAgentPayout)
			authorized.GET("/agents/:id/rank", adminHandler.GetAgentRank)
			authorized.GET("/agents/:id/network", adminHandler.GetAgentNetwork)

			// 合伙人协议与收益
			authorized.GET("/agents/:id/yield", adminHandler.GetAgentYield)
			authorized.GET("/agents/:id/yield/reserve", adminHandler.ListYieldReserve)
			authorized.PATCH("/agents/:id/agreement", adminHandler.UpdateAgreement)
			authorized.POST("/agents/:id/agreement/status", adminHandler.TransitionAgreementStatus)
			authorized.GET("/agreements/audit-logs", adminHandler.ListAgreementAuditLogs)
			authorized.POST("/yield/simulate", adminHandler.SimulateYield)
			authorized.POST("/yield/settlements", RateLimitMiddleware(redisClient, settlementRule, KeyByIPAndJSONField("agent_id")), adminHandler.EnqueueSettlement)

			// 提成领取
			authorized.GET("/agents/:id/claims/check", adminHandler.CheckClaim)
			authorized.POST("/agents/:id/claims", RateLimitMiddleware(redisClient, claimRule, KeyByOperatorAndParam("id")), adminHandler.ClaimPayout)
			authorized.GET("/claims", adminHandler.ListClaims)
			authorized.GET("/claims/:claim_id", adminHandler.GetClaim)

			// 权限管理
			authorized.GET("/authz/me", adminHandler.GetAuthzMe)
			authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
			authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
			authorized.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
			authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
			authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
			authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
			authorized.GET("/authz/operators/:operator_id/roles", adminHandler.GetAuthzOperatorRoles)
			authorized.PUT("/authz/operators/:operator_id/roles", adminHandler.SetAuthzOperatorRoles)
			authorized.GET("/authz/audit-logs", adminHandler.ListAuthzAuditLogs)
			authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	// 指标
	if c.Metrics != nil {
		metricsPath := strings.TrimSpace(cfg.Metrics.Path)
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		r.GET(metricsPath, gin.WrapH(c.Metrics.Handler()))
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "agents" && len(segments) > 3 {
		return segments[3]
	}
	return segments[1]
}
