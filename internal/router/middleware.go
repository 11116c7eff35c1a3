package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/fleetdesk/internal/authz"
	"github.com/fleetdesk/internal/cache"
	"github.com/fleetdesk/internal/config"
	handlershared "github.com/fleetdesk/internal/http/handlers/shared"
	"github.com/fleetdesk/internal/http/response"
	"github.com/fleetdesk/internal/logger"
	"github.com/fleetdesk/internal/metrics"
	"github.com/fleetdesk/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"
const operatorIDHeader = "X-Operator-ID"
const operatorIDContextKey = "operator_id"
const operatorRoleContextKey = "operator_role"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-Request-ID",
			"X-Operator-ID",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// MetricsMiddleware 记录 HTTP 请求指标，路径按路由模板归并
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// OperatorAuthMiddleware 后台操作员身份识别中间件
// 操作员编号取自 X-Operator-ID 请求头，必须对应一个已登记的业务员档案
func OperatorAuthMiddleware(agentRepo repository.AgentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		operatorID := strings.TrimSpace(c.GetHeader(operatorIDHeader))
		if operatorID == "" || agentRepo == nil {
			response.Unauthorized(c, handlershared.Message("error.unauthorized"))
			c.Abort()
			return
		}

		if cached, hit, cacheErr := cache.GetOperatorState(c.Request.Context(), operatorID); cacheErr == nil && hit && cached != nil {
			c.Set(operatorIDContextKey, cached.AgentID)
			c.Set(operatorRoleContextKey, cached.Role)
			c.Next()
			return
		}

		agent, err := agentRepo.GetByID(operatorID)
		if err != nil {
			logger.Errorw("operator_auth_lookup_failed",
				"operator_id", operatorID,
				"request_id", getRequestID(c),
				"error", err,
			)
			response.Error(c, response.CodeInternal, handlershared.Message("error.internal"))
			c.Abort()
			return
		}
		if agent == nil {
			logger.Warnw("operator_auth_unknown_operator",
				"operator_id", operatorID,
				"request_id", getRequestID(c),
			)
			response.Unauthorized(c, handlershared.Message("error.unauthorized"))
			c.Abort()
			return
		}
		state := cache.BuildOperatorState(agent)
		_ = cache.SetOperatorState(c.Request.Context(), state)

		c.Set(operatorIDContextKey, state.AgentID)
		c.Set(operatorRoleContextKey, state.Role)
		c.Next()
	}
}

// OperatorRBACMiddleware 后台 RBAC 鉴权中间件
// 业务角色与附加角色任一放行即通过；仅限本人的角色访问 :id 路由时必须是本人
func OperatorRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	selfScoped := make(map[string]struct{})
	for _, role := range authz.SelfScopedRoles() {
		selfScoped[role] = struct{}{}
	}
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("operator_rbac_service_unavailable")
			response.Unauthorized(c, handlershared.Message("error.unauthorized"))
			c.Abort()
			return
		}

		operatorID := handlershared.ContextString(c, operatorIDContextKey)
		if operatorID == "" {
			response.Unauthorized(c, handlershared.Message("error.unauthorized"))
			c.Abort()
			return
		}
		role := handlershared.ContextString(c, operatorRoleContextKey)

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceOperator(operatorID, role, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("operator_rbac_enforce_failed",
				"operator_id", operatorID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			response.Unauthorized(c, handlershared.Message("error.unauthorized"))
			c.Abort()
			return
		}
		if !allowed {
			logger.Warnw("operator_rbac_permission_denied",
				"operator_id", operatorID,
				"role", role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			response.Forbidden(c, handlershared.Message("error.forbidden"))
			c.Abort()
			return
		}

		if _, scoped := selfScoped[role]; scoped && !sameAgentParam(c, operatorID) {
			logger.Warnw("operator_rbac_scope_denied",
				"operator_id", operatorID,
				"role", role,
				"target_id", c.Param("id"),
				"path", c.Request.URL.Path,
			)
			response.Forbidden(c, handlershared.Message("error.operator_mismatch"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// sameAgentParam 路由不含 :id 时视为不涉及他人数据
func sameAgentParam(c *gin.Context, operatorID string) bool {
	target := strings.TrimSpace(c.Param("id"))
	if target == "" {
		return true
	}
	return strings.EqualFold(target, operatorID)
}
