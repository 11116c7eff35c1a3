package shared

import "strings"

// 错误消息表，未登记的 key 原样返回
var messages = map[string]string{
	"error.bad_request":              "invalid request",
	"error.unauthorized":             "operator not identified",
	"error.forbidden":                "permission denied",
	"error.not_found":                "resource not found",
	"error.too_many_requests":        "too many requests, please retry later",
	"error.internal":                 "internal error",
	"error.agent_not_found":          "agent not found",
	"error.agent_not_partner":        "agent is not a partner",
	"error.period_invalid":           "year or month is out of range",
	"error.agreement_invalid":        "agreement terms are invalid",
	"error.agreement_frozen":         "agreement terms are frozen while the agreement is active",
	"error.agreement_status_invalid": "agreement status transition is not allowed",
	"error.yield_input_invalid":      "yield input is invalid",
	"error.settlement_invalid":       "settlement request is invalid",
	"error.settlement_out_of_order":  "an earlier month cannot be settled after a later one",
	"error.claim_window_invalid":     "claim window is invalid",
	"error.claim_duplicate":          "payout already claimed for this month",
	"error.claim_in_progress":        "payout claim is being processed",
	"error.claim_not_found":          "claim record not found",
	"error.queue_unavailable":        "task queue unavailable",
	"error.role_invalid":             "role is invalid",
	"error.role_builtin":             "builtin role cannot be removed",
	"error.operator_mismatch":        "operators of this role may only access their own records",
}

// Message 解析错误 key 对应的提示文本
func Message(key string) string {
	key = strings.TrimSpace(key)
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
