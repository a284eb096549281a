package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GenerateSceneImageURI 场景定位参数
type GenerateSceneImageURI struct {
	ID      string `uri:"id" binding:"required"`       // 项目ID（必填）
	SceneID int    `uri:"scene_id" binding:"required"` // 场景序号（必填，1起）
}

// GenerateSceneImage 生成单个场景图片
// @Summary      生成场景图片
// @Description  根据场景提示词和地点参考生成场景图片；重新生成会删除旧图片并重置审核状态
// @Tags         流水线
// @Accept       json
// @Produce      json
// @Param        id        path      string  true  "项目ID"
// @Param        scene_id  path      int     true  "场景序号"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      400       {object}  ErrorResponse  "请求参数错误"
// @Failure      404       {object}  ErrorResponse  "项目或场景不存在"
// @Failure      502       {object}  ErrorResponse  "图片生成服务调用失败"
// @Failure      500       {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{id}/scenes/{scene_id}/image [post]
func (h *Handler) GenerateSceneImage(c *gin.Context) {
	var uri GenerateSceneImageURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid project id or scene id",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	scene, err := h.service.GenerateSceneImage(ctx, uri.ID, uri.SceneID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "场景图片生成成功",
		"data":    toSceneInfo(scene),
	})
}
