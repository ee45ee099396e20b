package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every response uses the {success, message?, ...} envelope. Infrastructure
// failures map to a generic message; internal detail stays in the logs.

func RespondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	body := gin.H{
		"success": false,
		"message": message,
	}

	if details != nil {
		body["details"] = details
	}

	ctx.JSON(http.StatusBadRequest, body)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, message)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message)
}
