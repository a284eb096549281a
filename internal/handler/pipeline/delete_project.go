package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DeleteProjectRequest 删除项目请求
type DeleteProjectRequest struct {
	ID string `uri:"id" binding:"required"` // 项目ID（必填）
}

// DeleteProject 删除项目
// @Summary      删除项目
// @Description  删除项目及其场景、音频资产，并清理对象存储中已生成的媒体文件
// @Tags         项目管理
// @Accept       json
// @Produce      json
// @Param        id  path      string  true  "项目ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      400  {object}  ErrorResponse  "请求参数错误"
// @Failure      404  {object}  ErrorResponse  "项目不存在"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{id} [delete]
func (h *Handler) DeleteProject(c *gin.Context) {
	var req DeleteProjectRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid project id",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	if err := h.service.DeleteProject(ctx, req.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "项目删除成功",
		"data": gin.H{
			"project_id": req.ID,
		},
	})
}
