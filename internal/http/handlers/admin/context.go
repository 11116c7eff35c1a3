package admin

import (
	handlershared "github.com/fleetdesk/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getOperatorID(c *gin.Context) (string, bool) {
	return handlershared.GetContextStringWithKeys(c, "operator_id", "error.internal")
}

func currentOperatorID(c *gin.Context) string {
	return handlershared.ContextString(c, "operator_id")
}

func currentOperatorRole(c *gin.Context) string {
	return handlershared.ContextString(c, "operator_role")
}

func currentRequestID(c *gin.Context) string {
	return handlershared.ContextString(c, "request_id")
}
