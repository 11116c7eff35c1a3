package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fleetdesk/internal/authz"
	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/models"
	"github.com/fleetdesk/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

func setupOperatorRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_operator_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Agent{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	for _, agent := range []models.Agent{
		{ID: "ADM-1", Role: constants.AgentRoleAdmin},
		{ID: "AGT-1", Role: constants.AgentRoleAgent},
		{ID: "SUP-1", Role: constants.AgentRoleSupport},
	} {
		if err := db.Create(&agent).Error; err != nil {
			t.Fatalf("create agent failed: %v", err)
		}
	}
	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	r := gin.New()
	r.Use(RequestIDMiddleware())
	admin := r.Group("/api/v1/admin")
	admin.Use(OperatorAuthMiddleware(repository.NewAgentRepository(db)), OperatorRBACMiddleware(authzService))
	ok := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "operator_id": c.GetString(operatorIDContextKey)})
	}
	admin.GET("/agents/:id/payout", ok)
	admin.POST("/agents/:id/claims", ok)
	admin.POST("/yield/settlements", ok)
	return r
}

func doOperatorRequest(t *testing.T, r *gin.Engine, method, path, operatorID string) int {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if operatorID != "" {
		req.Header.Set(operatorIDHeader, operatorID)
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode
}

func TestOperatorMiddlewares(t *testing.T) {
	r := setupOperatorRouter(t)
	cases := []struct {
		name     string
		method   string
		path     string
		operator string
		want     int
	}{
		{name: "missing operator", method: http.MethodGet, path: "/api/v1/admin/agents/AGT-1/payout", want: 401},
		{name: "unknown operator", method: http.MethodGet, path: "/api/v1/admin/agents/AGT-1/payout", operator: "GHOST", want: 401},
		{name: "admin any agent", method: http.MethodGet, path: "/api/v1/admin/agents/AGT-1/payout", operator: "ADM-1", want: 0},
		{name: "agent own payout", method: http.MethodGet, path: "/api/v1/admin/agents/agt-1/payout", operator: "AGT-1", want: 0},
		{name: "agent other payout", method: http.MethodGet, path: "/api/v1/admin/agents/AGT-2/payout", operator: "AGT-1", want: 403},
		{name: "agent cannot claim", method: http.MethodPost, path: "/api/v1/admin/agents/AGT-1/claims", operator: "AGT-1", want: 403},
		{name: "support claims for others", method: http.MethodPost, path: "/api/v1/admin/agents/AGT-1/claims", operator: "SUP-1", want: 0},
		{name: "support cannot settle", method: http.MethodPost, path: "/api/v1/admin/yield/settlements", operator: "SUP-1", want: 403},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := doOperatorRequest(t, r, tc.method, tc.path, tc.operator)
			if got != tc.want {
				t.Fatalf("status_code want %d got %d", tc.want, got)
			}
		})
	}
}
