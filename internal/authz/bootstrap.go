package authz

import (
	"fmt"

	"github.com/fleetdesk/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// 自助查询类接口，业务员与合伙人共用；路径中的 :id 由中间件限定为本人
var selfServicePolicies = []Policy{
	{Object: "/admin/agents/:id/payout", Action: "GET"},
	{Object: "/admin/agents/:id/rank", Action: "GET"},
	{Object: "/admin/agents/:id/network", Action: "GET"},
	{Object: "/admin/agents/:id/claims/check", Action: "GET"},
}

// BuiltinRoleSeeds 系统预置角色矩阵
// 与业务员角色同名的预置角色（admin/support/agent/partner）按业务员档案自动生效
func BuiltinRoleSeeds() []RoleSeed {
	partnerPolicies := append([]Policy{
		{Object: "/admin/agents/:id/yield", Action: "GET"},
		{Object: "/admin/agents/:id/yield/reserve", Action: "GET"},
		{Object: "/admin/yield/simulate", Action: "POST"},
	}, selfServicePolicies...)

	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     constants.AgentRoleSupport,
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/agents/:id/claims", Action: "POST"},
				{Object: "/admin/yield/simulate", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     "finance",
			Inherits: []string{constants.AgentRoleSupport},
			Policies: []Policy{
				{Object: "/admin/yield/settlements", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role: constants.AgentRoleAdmin,
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
			Immutable: true,
		},
		{
			Role:      constants.AgentRoleAgent,
			Policies:  selfServicePolicies,
			Immutable: true,
		},
		{
			Role:      constants.AgentRolePartner,
			Policies:  partnerPolicies,
			Immutable: true,
		},
	}
}

// SelfScopedRoles 只能访问本人数据的业务角色
func SelfScopedRoles() []string {
	return []string{constants.AgentRoleAgent, constants.AgentRolePartner}
}

func isBuiltinRole(normalized string) bool {
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err == nil && role == normalized && seed.Immutable {
			return true
		}
	}
	return false
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor); err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
