package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/houzhh15/coedit/cmd/server/internal/collab"
)

// successResponse 返回成功响应
func successResponse(c *gin.Context, data interface{}) {
	c.JSON(200, gin.H{
		"success": true,
		"data":    data,
	})
}

// badRequestResponse 返回 400 响应
func badRequestResponse(c *gin.Context, message string) {
	c.JSON(400, gin.H{
		"success": false,
		"error":   message,
	})
}

// internalErrorResponse 返回 500 响应
func internalErrorResponse(c *gin.Context, err error) {
	c.JSON(500, gin.H{
		"success": false,
		"error":   "internal server error",
		"detail":  err.Error(),
	})
}

// collabErrorResponse 将协作引擎错误映射到 HTTP 状态码
func collabErrorResponse(c *gin.Context, err error) {
	status := 500
	switch {
	case errors.Is(err, collab.ErrValidation):
		status = 400
	case errors.Is(err, collab.ErrSessionNotFound), errors.Is(err, collab.ErrNotParticipant):
		status = 404
	case errors.Is(err, collab.ErrStaleVersion):
		status = 409
	case errors.Is(err, collab.ErrInvalidOperation), errors.Is(err, collab.ErrUnsupportedOperation):
		status = 422
	case errors.Is(err, collab.ErrSessionLimit):
		status = 503
	default:
		internalErrorResponse(c, err)
		return
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}
