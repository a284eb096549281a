package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pipelineService "reelforge/internal/service/pipeline"
)

// GenerateMusicURI 项目定位参数
type GenerateMusicURI struct {
	ID string `uri:"id" binding:"required"` // 项目ID（必填）
}

// GenerateMusicRequest 生成/选定背景音乐请求
// asset_id 和 prompt 二选一：给出 asset_id 时复用已有音乐资产（不产生费用），
// 否则按提示词生成新音乐
type GenerateMusicRequest struct {
	AssetID string `json:"asset_id"` // 已有音乐资产ID
	Prompt  string `json:"prompt"`   // 音乐生成提示词
}

// GenerateMusic 生成或选定背景音乐
// @Summary      生成背景音乐
// @Description  按提示词生成背景音乐（时长为全部场景时长之和），或选定项目下已有的音乐资产
// @Tags         流水线
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "项目ID"
// @Param        request  body      GenerateMusicRequest  true  "音乐请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      404      {object}  ErrorResponse  "项目或音乐资产不存在"
// @Failure      502      {object}  ErrorResponse  "音乐生成服务调用失败"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{id}/music [post]
func (h *Handler) GenerateMusic(c *gin.Context) {
	var uri GenerateMusicURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid project id",
			Detail:  err.Error(),
		})
		return
	}

	var req GenerateMusicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	project, err := h.service.GenerateMusic(ctx, uri.ID, pipelineService.MusicInput{
		AssetID: req.AssetID,
		Prompt:  req.Prompt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "背景音乐已就绪",
		"data":    toProjectInfo(project),
	})
}
