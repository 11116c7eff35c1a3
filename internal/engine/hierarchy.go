package engine

import (
	"strings"

	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/models"
)

// NetworkDepth 团队津贴的汇总层级：只统计直属学员，不做多级递归
const NetworkDepth = 1

// Hierarchy 单个业务员的客户归属视图
type Hierarchy struct {
	AgentID        string          `json:"agent_id"`
	DirectClients  []models.Client `json:"direct_clients"`
	TraineeAgents  []models.Agent  `json:"trainee_agents"`
	TraineeClients []models.Client `json:"trainee_clients"`
}

// ResolveHierarchy 解析业务员的直属客户与直属学员客户
func ResolveHierarchy(agents []models.Agent, clients []models.Client, agentID string) Hierarchy {
	h := Hierarchy{
		AgentID:        strings.TrimSpace(agentID),
		DirectClients:  []models.Client{},
		TraineeAgents:  []models.Agent{},
		TraineeClients: []models.Client{},
	}
	if NormalizeID(agentID) == "" {
		return h
	}

	trainees := newIDSet()
	for _, agent := range agents {
		if SameID(agent.ParentAgentID, agentID) && isTraineeLevel(agent.ExperienceLevel) {
			h.TraineeAgents = append(h.TraineeAgents, agent)
			trainees.add(agent.ID)
		}
	}

	for _, client := range clients {
		switch {
		case SameID(client.AssignedAgentID, agentID):
			h.DirectClients = append(h.DirectClients, client)
		case trainees.has(client.AssignedAgentID):
			h.TraineeClients = append(h.TraineeClients, client)
		}
	}
	return h
}

// FindAgent 按归一化编号查找业务员
func FindAgent(agents []models.Agent, agentID string) (*models.Agent, bool) {
	for i := range agents {
		if SameID(agents[i].ID, agentID) {
			return &agents[i], true
		}
	}
	return nil, false
}

// TraineeIDs 返回直属学员编号
func (h Hierarchy) TraineeIDs() []string {
	ids := make([]string, 0, len(h.TraineeAgents))
	for _, agent := range h.TraineeAgents {
		ids = append(ids, agent.ID)
	}
	return ids
}

// TraineeClientCount 统计某个学员名下的客户数
func (h Hierarchy) TraineeClientCount(traineeID string) int {
	count := 0
	for _, client := range h.TraineeClients {
		if SameID(client.AssignedAgentID, traineeID) {
			count++
		}
	}
	return count
}

// isTraineeLevel 未设置等级视同学员；导师、组长即使挂在上级名下也不计入团队津贴
func isTraineeLevel(level string) bool {
	normalized := NormalizeLevel(level)
	return normalized == "" || normalized == constants.ExperienceLevelTrainee
}

// NormalizeLevel 归一化经验等级
func NormalizeLevel(level string) string {
	return strings.ToLower(strings.TrimSpace(level))
}
