package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pipelineService "reelforge/internal/service/pipeline"
)

// UpdateProjectRequest 更新项目请求（未给出的字段保持不变）
type UpdateProjectRequest struct {
	Topic       *string  `json:"topic"`                   // 视频主题
	Categories  []string `json:"categories"`              // 分类标签（整体替换）
	MusicPrompt *string  `json:"background_music_prompt"` // 背景音乐提示词
}

// UpdateProject 更新项目元数据
// @Summary      更新项目
// @Description  浅合并更新项目的主题、分类和音乐提示词，返回更新后的项目
// @Tags         项目管理
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "项目ID"
// @Param        request  body      UpdateProjectRequest  true  "更新项目请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      404      {object}  ErrorResponse  "项目不存在"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{id} [patch]
func (h *Handler) UpdateProject(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid project id",
		})
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	project, err := h.service.UpdateProject(ctx, projectID, pipelineService.UpdateProjectInput{
		Topic:       req.Topic,
		Categories:  req.Categories,
		MusicPrompt: req.MusicPrompt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "项目更新成功",
		"data":    toProjectInfo(project),
	})
}
