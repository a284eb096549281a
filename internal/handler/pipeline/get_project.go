package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetProjectRequest 获取项目请求
type GetProjectRequest struct {
	ID string `uri:"id" binding:"required"` // 项目ID（必填）
}

// GetProject 获取项目详情
// @Summary      获取项目
// @Description  根据项目ID获取项目完整信息，包含状态、成本明细和成片地址
// @Tags         项目管理
// @Accept       json
// @Produce      json
// @Param        id  path      string  true  "项目ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      400  {object}  ErrorResponse  "请求参数错误"
// @Failure      404  {object}  ErrorResponse  "项目不存在"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{id} [get]
func (h *Handler) GetProject(c *gin.Context) {
	var req GetProjectRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid project id",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	project, err := h.service.GetProject(ctx, req.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toProjectInfo(project),
	})
}
