package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fleetdesk/internal/models"
)

const operatorStateCacheTTL = 5 * time.Minute

// OperatorState 后台操作员身份快照，供鉴权中间件复用
type OperatorState struct {
	AgentID   string `json:"agent_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	UpdatedAt int64  `json:"updated_at"`
}

func operatorStateKey(agentID string) string {
	return fmt.Sprintf("operator:%s", strings.ToLower(strings.TrimSpace(agentID)))
}

// BuildOperatorState 从业务员档案构建身份快照
func BuildOperatorState(agent *models.Agent) *OperatorState {
	if agent == nil {
		return nil
	}
	return &OperatorState{
		AgentID:   agent.ID,
		Name:      agent.Name,
		Role:      strings.ToLower(strings.TrimSpace(agent.Role)),
		UpdatedAt: time.Now().Unix(),
	}
}

// GetOperatorState 获取操作员身份快照
func GetOperatorState(ctx context.Context, agentID string) (*OperatorState, bool, error) {
	if strings.TrimSpace(agentID) == "" {
		return nil, false, nil
	}
	var state OperatorState
	hit, err := GetJSON(ctx, operatorStateKey(agentID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetOperatorState 写入操作员身份快照
func SetOperatorState(ctx context.Context, state *OperatorState) error {
	if state == nil || strings.TrimSpace(state.AgentID) == "" {
		return nil
	}
	return SetJSON(ctx, operatorStateKey(state.AgentID), state, operatorStateCacheTTL)
}

// DelOperatorState 删除操作员身份快照
func DelOperatorState(ctx context.Context, agentID string) error {
	if strings.TrimSpace(agentID) == "" {
		return nil
	}
	return Del(ctx, operatorStateKey(agentID))
}
