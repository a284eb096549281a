package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GenerateScriptRequest 生成脚本请求
type GenerateScriptRequest struct {
	ID string `uri:"id" binding:"required"` // 项目ID（必填）
}

// GenerateScript 生成解说脚本和场景拆分
// @Summary      生成脚本
// @Description  调用大模型生成解说脚本并拆分为场景，为每个场景分配地点和估算时长。这是流水线的第二步。
// @Tags         流水线
// @Accept       json
// @Produce      json
// @Param        id  path      string  true  "项目ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      400  {object}  ErrorResponse  "请求参数错误"
// @Failure      404  {object}  ErrorResponse  "项目不存在"
// @Failure      412  {object}  ErrorResponse  "前置条件不满足（缺少主题或角色，或脚本长度不足）"
// @Failure      502  {object}  ErrorResponse  "大模型调用失败"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{id}/script [post]
func (h *Handler) GenerateScript(c *gin.Context) {
	var req GenerateScriptRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid project id",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	project, err := h.service.GenerateScript(ctx, req.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "脚本生成成功",
		"data":    toProjectInfo(project),
	})
}
