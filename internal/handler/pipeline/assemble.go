package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AssembleVideoRequest 合成成片请求
type AssembleVideoRequest struct {
	ID string `uri:"id" binding:"required"` // 项目ID（必填）
}

// AssembleVideo 提交成片合成
// @Summary      合成成片
// @Description  将场景视频、配音和背景音乐提交到渲染服务合成竖屏成片，并启动后台轮询。这是流水线的最后一步。
// @Tags         流水线
// @Accept       json
// @Produce      json
// @Param        id  path      string  true  "项目ID"
// @Success      202  {object}  map[string]interface{}  "已受理，进入渲染"
// @Failure      400  {object}  ErrorResponse  "请求参数错误"
// @Failure      404  {object}  ErrorResponse  "项目不存在"
// @Failure      409  {object}  ErrorResponse  "已有渲染任务进行中"
// @Failure      412  {object}  ErrorResponse  "前置条件不满足（缺少配音或场景视频）"
// @Failure      502  {object}  ErrorResponse  "渲染服务调用失败"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{id}/assemble [post]
func (h *Handler) AssembleVideo(c *gin.Context) {
	var req AssembleVideoRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid project id",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	project, err := h.service.AssembleVideo(ctx, req.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"code":    0,
		"message": "渲染任务已提交",
		"data":    toProjectInfo(project),
	})
}
