package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/houzhh15/coedit/cmd/server/internal/collab"
)

// HandleListSessions GET /api/v1/sessions
// 列出所有活跃会话
func HandleListSessions(svc collab.CollaborationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		successResponse(c, svc.ActiveSessions())
	}
}

// HandleSessionState GET /api/v1/sessions/state?key=xxx&since=N
// 查询会话状态，携带 since 时返回增量操作
func HandleSessionState(svc collab.CollaborationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Query("key")
		if strings.TrimSpace(key) == "" {
			badRequestResponse(c, "key is required")
			return
		}

		since := -1
		if raw := c.Query("since"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				badRequestResponse(c, "since must be a non-negative integer")
				return
			}
			since = parsed
		}

		state, err := svc.SessionState(key, since)
		if err != nil {
			collabErrorResponse(c, err)
			return
		}
		successResponse(c, state)
	}
}

// HandleSessionContent GET /api/v1/sessions/content?key=xxx
// 查询文档内容快照
func HandleSessionContent(svc collab.CollaborationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Query("key")
		if strings.TrimSpace(key) == "" {
			badRequestResponse(c, "key is required")
			return
		}

		snapshot, err := svc.SessionContent(key)
		if err != nil {
			collabErrorResponse(c, err)
			return
		}
		successResponse(c, snapshot)
	}
}

// HandleJoinSession POST /api/v1/sessions/join
// 加入会话，key 无会话时以 initial_content 创建
func HandleJoinSession(svc collab.CollaborationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Key            string `json:"key"`
			UserID         string `json:"user_id"`
			UserName       string `json:"user_name"`
			InitialContent string `json:"initial_content"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequestResponse(c, "invalid request")
			return
		}

		result, err := svc.Join(body.Key, body.UserID, body.UserName, body.InitialContent)
		if err != nil {
			collabErrorResponse(c, err)
			return
		}
		successResponse(c, result)
	}
}

// HandleLeaveSession POST /api/v1/sessions/leave
// 离开会话；不存在的会话或未加入的用户返回 left=false
func HandleLeaveSession(svc collab.CollaborationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Key    string `json:"key"`
			UserID string `json:"user_id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequestResponse(c, "invalid request")
			return
		}

		left, err := svc.Leave(body.Key, body.UserID)
		if err != nil {
			collabErrorResponse(c, err)
			return
		}
		successResponse(c, gin.H{"left": left})
	}
}

// HandleUpdateCursor POST /api/v1/sessions/cursor
// 更新光标位置与选区
func HandleUpdateCursor(svc collab.CollaborationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Key       string            `json:"key"`
			UserID    string            `json:"user_id"`
			Position  int               `json:"position"`
			Selection *collab.Selection `json:"selection"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequestResponse(c, "invalid request")
			return
		}

		updated, err := svc.UpdateCursor(body.Key, body.UserID, body.Position, body.Selection)
		if err != nil {
			collabErrorResponse(c, err)
			return
		}
		successResponse(c, gin.H{"updated": updated})
	}
}

// HandleApplyOperation POST /api/v1/sessions/operations
// 应用编辑操作；content/length 按操作类型可选，故用指针区分缺省
func HandleApplyOperation(svc collab.CollaborationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Key      string  `json:"key"`
			UserID   string  `json:"user_id"`
			Type     string  `json:"type"`
			Position int     `json:"position"`
			Content  *string `json:"content"`
			Length   *int    `json:"length"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequestResponse(c, "invalid request")
			return
		}

		result, err := svc.ApplyOperation(body.Key, body.UserID, body.Type, body.Position, body.Content, body.Length)
		if err != nil {
			collabErrorResponse(c, err)
			return
		}
		successResponse(c, result)
	}
}

// HandleSyncContent POST /api/v1/sessions/sync
// 全量替换文档内容，供本地状态漂移的客户端重新对齐
func HandleSyncContent(svc collab.CollaborationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Key     string  `json:"key"`
			UserID  string  `json:"user_id"`
			Content *string `json:"content"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequestResponse(c, "invalid request")
			return
		}
		if body.Content == nil {
			badRequestResponse(c, "content is required")
			return
		}

		result, err := svc.SyncContent(body.Key, body.UserID, *body.Content)
		if err != nil {
			collabErrorResponse(c, err)
			return
		}
		successResponse(c, result)
	}
}

// RegisterCollabRoutes 注册协作会话路由
func RegisterCollabRoutes(r gin.IRouter, svc collab.CollaborationService) {
	group := r.Group("/api/v1/sessions")
	group.GET("", HandleListSessions(svc))
	group.GET("/state", HandleSessionState(svc))
	group.GET("/content", HandleSessionContent(svc))
	group.POST("/join", HandleJoinSession(svc))
	group.POST("/leave", HandleLeaveSession(svc))
	group.POST("/cursor", HandleUpdateCursor(svc))
	group.POST("/operations", HandleApplyOperation(svc))
	group.POST("/sync", HandleSyncContent(svc))
}
