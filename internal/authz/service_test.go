package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	return svc
}

func TestEnforceOperatorByAgentRole(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	cases := []struct {
		role   string
		obj    string
		act    string
		expect bool
	}{
		{role: "admin", obj: "/api/v1/admin/agents/AGT-1/agreement", act: "PATCH", expect: true},
		{role: "support", obj: "/api/v1/admin/claims", act: "GET", expect: true},
		{role: "support", obj: "/api/v1/admin/agents/AGT-1/claims", act: "POST", expect: true},
		{role: "support", obj: "/api/v1/admin/yield/settlements", act: "POST", expect: false},
		{role: "finance", obj: "/api/v1/admin/yield/settlements", act: "POST", expect: true},
		{role: "agent", obj: "/api/v1/admin/agents/AGT-1/payout", act: "GET", expect: true},
		{role: "agent", obj: "/api/v1/admin/agents/AGT-1/yield", act: "GET", expect: false},
		{role: "agent", obj: "/api/v1/admin/claims", act: "GET", expect: false},
		{role: "Partner", obj: "/api/v1/admin/agents/PRT-1/yield/reserve", act: "get", expect: true},
		{role: "partner", obj: "/api/v1/admin/agents/PRT-1/agreement", act: "PATCH", expect: false},
		{role: "", obj: "/api/v1/admin/claims", act: "GET", expect: false},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceOperator("OP-1", tc.role, tc.obj, tc.act)
		if err != nil {
			t.Fatalf("enforce %s %s %s failed: %v", tc.role, tc.act, tc.obj, err)
		}
		if allow != tc.expect {
			t.Fatalf("role=%s %s %s want %v got %v", tc.role, tc.act, tc.obj, tc.expect, allow)
		}
	}
}

func TestSetOperatorRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SetOperatorRoles("AGT-9", []string{"finance"}); err != nil {
		t.Fatalf("set operator roles failed: %v", err)
	}
	roles, err := svc.GetOperatorRoles("agt-9")
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:finance" {
		t.Fatalf("roles want [role:finance], got=%v", roles)
	}

	allow, err := svc.EnforceOperator("AGT-9", "agent", "/admin/yield/settlements", "POST")
	if err != nil {
		t.Fatalf("enforce extra role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected extra finance role to allow settlements")
	}

	if err := svc.SetOperatorRoles("AGT-9", nil); err != nil {
		t.Fatalf("clear operator roles failed: %v", err)
	}
	allow, err = svc.EnforceOperator("AGT-9", "agent", "/admin/yield/settlements", "POST")
	if err != nil {
		t.Fatalf("enforce after clear failed: %v", err)
	}
	if allow {
		t.Fatalf("expected permission removed after clearing roles")
	}
}

func TestGrantAndRevokeRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("ops", "/admin/agents/:id/network", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetOperatorRoles("OP-2", []string{"ops"}); err != nil {
		t.Fatalf("set operator roles failed: %v", err)
	}
	allow, err := svc.EnforceOperator("OP-2", "", "/api/v1/admin/agents/AGT-3/network", "GET")
	if err != nil || !allow {
		t.Fatalf("expected allow after grant, allow=%v err=%v", allow, err)
	}

	policies, err := svc.GetOperatorPolicies("OP-2", "")
	if err != nil {
		t.Fatalf("get operator policies failed: %v", err)
	}
	if len(policies) != 1 || policies[0].Object != "/admin/agents/:id/network" {
		t.Fatalf("unexpected operator policies: %+v", policies)
	}

	if err := svc.RevokeRolePolicy("ops", "/admin/agents/:id/network", "GET"); err != nil {
		t.Fatalf("revoke role policy failed: %v", err)
	}
	allow, err = svc.EnforceOperator("OP-2", "", "/api/v1/admin/agents/AGT-3/network", "GET")
	if err != nil || allow {
		t.Fatalf("expected deny after revoke, allow=%v err=%v", allow, err)
	}

	if err := svc.DeleteRole("ops"); err != nil {
		t.Fatalf("delete role failed: %v", err)
	}
	if err := svc.DeleteRole("admin"); err == nil {
		t.Fatalf("expected builtin role deletion to fail")
	}
}

func TestPolicyChangesReloadSharedStore(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:authz_shared_store?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	first, err := NewService(db)
	if err != nil {
		t.Fatalf("new first authz service failed: %v", err)
	}
	second, err := NewService(db)
	if err != nil {
		t.Fatalf("new second authz service failed: %v", err)
	}

	if err := second.GrantRolePolicy("auditor", "/admin/claims", "GET"); err != nil {
		t.Fatalf("grant on second failed: %v", err)
	}
	if err := first.GrantRolePolicy("auditor", "/admin/claims/:id", "GET"); err != nil {
		t.Fatalf("grant on first failed: %v", err)
	}
	policies, err := first.GetRolePolicies("auditor")
	if err != nil {
		t.Fatalf("get role policies failed: %v", err)
	}
	if len(policies) != 2 {
		t.Fatalf("first service should see both grants after reload, got %+v", policies)
	}

	reopened, err := NewService(db)
	if err != nil {
		t.Fatalf("reopen authz service failed: %v", err)
	}
	allow, err := reopened.Enforce("role:auditor", "/api/v1/admin/claims", "GET")
	if err != nil || !allow {
		t.Fatalf("grant should persist across services, allow=%v err=%v", allow, err)
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/agents/:id", want: "/admin/agents/:id"},
		{in: "/admin/claims", want: "/admin/claims"},
		{in: "admin/claims", want: "/admin/claims"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap must be idempotent: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:readonly_auditor": true,
		"role:support":          true,
		"role:finance":          true,
		"role:admin":            true,
		"role:agent":            true,
		"role:partner":          true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	policies, err := svc.GetRolePolicies("partner")
	if err != nil {
		t.Fatalf("get partner policies failed: %v", err)
	}
	if len(policies) != 7 {
		t.Fatalf("partner policies want 7 got %d", len(policies))
	}
}
