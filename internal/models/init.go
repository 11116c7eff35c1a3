package models

import (
	"strings"

	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/logger"
)

// InitDefaultOperator 初始化默认后台操作员（admin 角色）
func InitDefaultOperator(operatorID, name string) error {
	var count int64
	if err := DB.Model(&Agent{}).Where("role = ?", constants.AgentRoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		operatorID = "ADM-1"
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Administrator"
	}

	operator := Agent{
		ID:   operatorID,
		Name: name,
		Role: constants.AgentRoleAdmin,
	}
	if err := DB.Create(&operator).Error; err != nil {
		return err
	}
	logger.Warnw("default_operator_created", "operator_id", operatorID)
	return nil
}
