package engine

import (
	"context"
	"fmt"
	"strings"
)

// ClaimStore 领取记录存储（仅用于存在性判断）
type ClaimStore interface {
	ClaimExists(ctx context.Context, claimID string) (bool, error)
}

// ClaimResult 领取校验结果
type ClaimResult struct {
	Allowed bool   `json:"allowed"`
	ClaimID string `json:"claim_id"`
}

// ClaimLedger 月度领取幂等闸门，本身不持有状态，由调用方负责落库
type ClaimLedger struct {
	store ClaimStore
}

// NewClaimLedger 创建领取闸门
func NewClaimLedger(store ClaimStore) *ClaimLedger {
	return &ClaimLedger{store: store}
}

// ClaimID 生成领取凭证编号；monthIndex 从 0 开始，编号中的月份从 1 开始
func ClaimID(agentID string, monthIndex, year int) string {
	return fmt.Sprintf("CLAIM-%s-%d-%d", strings.TrimSpace(agentID), monthIndex+1, year)
}

// ValidateClaimPeriod 校验领取周期
func ValidateClaimPeriod(agentID string, monthIndex, year int) error {
	if NormalizeID(agentID) == "" {
		return fmt.Errorf("%w: agent id is required", ErrClaimPeriodInvalid)
	}
	if monthIndex < 0 || monthIndex > 11 {
		return fmt.Errorf("%w: month index %d out of range", ErrClaimPeriodInvalid, monthIndex)
	}
	if year < 1 {
		return fmt.Errorf("%w: year %d out of range", ErrClaimPeriodInvalid, year)
	}
	return nil
}

// TryClaim 检查该业务员当月是否已领取
func (l *ClaimLedger) TryClaim(ctx context.Context, agentID string, monthIndex, year int) (ClaimResult, error) {
	if err := ValidateClaimPeriod(agentID, monthIndex, year); err != nil {
		return ClaimResult{}, err
	}
	result := ClaimResult{ClaimID: ClaimID(agentID, monthIndex, year)}
	if l == nil || l.store == nil {
		return result, ErrClaimStoreUnavailable
	}
	exists, err := l.store.ClaimExists(ctx, result.ClaimID)
	if err != nil {
		return result, err
	}
	result.Allowed = !exists
	return result, nil
}
