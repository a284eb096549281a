package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetScenesRequest 获取场景列表请求
type GetScenesRequest struct {
	ID string `uri:"id" binding:"required"` // 项目ID（必填）
}

// GetScenesResponseData 获取场景列表响应数据
type GetScenesResponseData struct {
	ProjectID string      `json:"project_id"` // 项目ID
	Scenes    []SceneInfo `json:"scenes"`     // 场景列表
	Count     int         `json:"count"`      // 场景数量
}

// GetScenes 获取项目的所有场景
// @Summary      获取场景列表
// @Description  根据项目ID获取全部场景，按场景序号排序
// @Tags         场景管理
// @Accept       json
// @Produce      json
// @Param        id  path      string  true  "项目ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      400  {object}  ErrorResponse  "请求参数错误"
// @Failure      404  {object}  ErrorResponse  "项目不存在"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{id}/scenes [get]
func (h *Handler) GetScenes(c *gin.Context) {
	var req GetScenesRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid project id",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	scenes, err := h.service.GetScenes(ctx, req.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": GetScenesResponseData{
			ProjectID: req.ID,
			Scenes:    toSceneInfoList(scenes),
			Count:     len(scenes),
		},
	})
}
