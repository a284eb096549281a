package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pipelineService "reelforge/internal/service/pipeline"
)

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Topic       string   `json:"topic"`                             // 视频主题（与 topic_id 二选一）
	TopicID     string   `json:"topic_id"`                          // 选题库选题ID
	SceneCount  int      `json:"scene_count" binding:"required"`    // 场景数量（必填）
	Categories  []string `json:"categories"`                        // 分类标签
	CharacterID string   `json:"character_id" binding:"required"`   // 解说角色ID（必填）
	MusicPrompt string   `json:"background_music_prompt,omitempty"` // 背景音乐提示词
}

// CreateProject 创建视频项目
// @Summary      创建项目
// @Description  创建视频项目，选定主题与解说角色，返回完整的项目信息。这是流水线的第一步。
// @Tags         项目管理
// @Accept       json
// @Produce      json
// @Param        request  body      CreateProjectRequest  true  "创建项目请求"
// @Success      201      {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"项目创建成功\", \"data\": {...}}"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      404      {object}  ErrorResponse  "角色或选题不存在"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects [post]
func (h *Handler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	project, err := h.service.CreateProject(ctx, pipelineService.CreateProjectInput{
		Topic:       req.Topic,
		TopicID:     req.TopicID,
		SceneCount:  req.SceneCount,
		Categories:  req.Categories,
		CharacterID: req.CharacterID,
		MusicPrompt: req.MusicPrompt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "项目创建成功",
		"data":    toProjectInfo(project),
	})
}
