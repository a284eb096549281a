package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GenerateVoiceoverRequest 生成配音请求
type GenerateVoiceoverRequest struct {
	ID string `uri:"id" binding:"required"` // 项目ID（必填）
}

// GenerateVoiceover 生成解说配音
// @Summary      生成配音
// @Description  使用项目角色的音色将脚本合成为配音音频并上传到对象存储，脚本中的停顿标记会转换为SSML停顿。这是流水线的第三步。
// @Tags         流水线
// @Accept       json
// @Produce      json
// @Param        id  path      string  true  "项目ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      400  {object}  ErrorResponse  "请求参数错误"
// @Failure      404  {object}  ErrorResponse  "项目不存在"
// @Failure      412  {object}  ErrorResponse  "前置条件不满足（脚本未生成或角色缺少音色）"
// @Failure      502  {object}  ErrorResponse  "语音合成服务调用失败"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{id}/voiceover [post]
func (h *Handler) GenerateVoiceover(c *gin.Context) {
	var req GenerateVoiceoverRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid project id",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	project, err := h.service.GenerateVoiceover(ctx, req.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "配音生成成功",
		"data":    toProjectInfo(project),
	})
}
