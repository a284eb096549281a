package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pipelineService "reelforge/internal/service/pipeline"
)

// UpdateSceneURI 场景定位参数
type UpdateSceneURI struct {
	ID      string `uri:"id" binding:"required"`       // 项目ID（必填）
	SceneID int    `uri:"scene_id" binding:"required"` // 场景序号（必填，1起）
}

// UpdateSceneRequest 更新场景请求（未给出的字段保持不变）
type UpdateSceneRequest struct {
	Duration          *int    `json:"duration"`            // 时长（秒，入库时收敛到1-15）
	Voiceover         *string `json:"voiceover"`           // 解说词
	ImagePrompt       *string `json:"image_prompt"`        // 图片提示词
	MotionPrompt      *string `json:"motion_prompt"`       // 运动提示词
	LocationID        *string `json:"location_id"`         // 地点ID
	ActionID          *string `json:"action_id"`           // 动作ID
	CameraMovementID  *string `json:"camera_movement_id"`  // 运镜ID
	CharacterMotionID *string `json:"character_motion_id"` // 角色运动ID
}

// UpdateScene 更新场景元数据
// @Summary      更新场景
// @Description  浅合并更新单个场景的解说词、提示词和参考库引用，时长越界会被收敛
// @Tags         场景管理
// @Accept       json
// @Produce      json
// @Param        id        path      string              true  "项目ID"
// @Param        scene_id  path      int                 true  "场景序号"
// @Param        request   body      UpdateSceneRequest  true  "更新场景请求"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      400       {object}  ErrorResponse  "请求参数错误"
// @Failure      404       {object}  ErrorResponse  "项目或场景不存在"
// @Failure      500       {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{id}/scenes/{scene_id} [patch]
func (h *Handler) UpdateScene(c *gin.Context) {
	var uri UpdateSceneURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid project id or scene id",
			Detail:  err.Error(),
		})
		return
	}

	var req UpdateSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	scene, err := h.service.UpdateScene(ctx, uri.ID, uri.SceneID, pipelineService.UpdateSceneInput{
		Duration:          req.Duration,
		Voiceover:         req.Voiceover,
		ImagePrompt:       req.ImagePrompt,
		MotionPrompt:      req.MotionPrompt,
		LocationID:        req.LocationID,
		ActionID:          req.ActionID,
		CameraMovementID:  req.CameraMovementID,
		CharacterMotionID: req.CharacterMotionID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "场景更新成功",
		"data":    toSceneInfo(scene),
	})
}
