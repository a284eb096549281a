package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ApproveSceneURI 场景定位参数
type ApproveSceneURI struct {
	ID      string `uri:"id" binding:"required"`       // 项目ID（必填）
	SceneID int    `uri:"scene_id" binding:"required"` // 场景序号（必填，1起）
}

// ApproveSceneRequest 审核场景图片请求
type ApproveSceneRequest struct {
	Approved *bool `json:"approved" binding:"required"` // 是否通过（必填）
}

// ApproveScene 审核场景图片
// @Summary      审核场景图片
// @Description  标记场景图片审核是否通过；所有场景通过后才允许生成场景视频
// @Tags         场景管理
// @Accept       json
// @Produce      json
// @Param        id        path      string               true  "项目ID"
// @Param        scene_id  path      int                  true  "场景序号"
// @Param        request   body      ApproveSceneRequest  true  "审核请求"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      400       {object}  ErrorResponse  "请求参数错误"
// @Failure      404       {object}  ErrorResponse  "项目或场景不存在"
// @Failure      500       {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{id}/scenes/{scene_id}/approve [post]
func (h *Handler) ApproveScene(c *gin.Context) {
	var uri ApproveSceneURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid project id or scene id",
			Detail:  err.Error(),
		})
		return
	}

	var req ApproveSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	scene, err := h.service.ApproveScene(ctx, uri.ID, uri.SceneID, *req.Approved)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "场景审核状态已更新",
		"data":    toSceneInfo(scene),
	})
}
