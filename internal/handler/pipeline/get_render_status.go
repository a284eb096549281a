package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetRenderStatusRequest 查询渲染状态请求
type GetRenderStatusRequest struct {
	ID string `uri:"id" binding:"required"` // 项目ID（必填）
}

// GetRenderStatusResponseData 查询渲染状态响应数据
type GetRenderStatusResponseData struct {
	Project ProjectInfo    `json:"project"`       // 项目信息（含状态和成片URL）
	Job     *RenderJobInfo `json:"job,omitempty"` // 活跃的轮询任务（无任务时为空）
}

// GetRenderStatus 查询渲染状态
// @Summary      查询渲染状态
// @Description  查询项目的渲染进度，包含项目当前状态和活跃的轮询任务信息
// @Tags         流水线
// @Accept       json
// @Produce      json
// @Param        id  path      string  true  "项目ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      400  {object}  ErrorResponse  "请求参数错误"
// @Failure      404  {object}  ErrorResponse  "项目不存在"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{id}/render [get]
func (h *Handler) GetRenderStatus(c *gin.Context) {
	var req GetRenderStatusRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid project id",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	project, job, err := h.service.GetRenderStatus(ctx, req.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	data := GetRenderStatusResponseData{
		Project: toProjectInfo(project),
	}
	if job != nil {
		info := toRenderJobInfo(job)
		data.Job = &info
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}
