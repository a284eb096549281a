package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pipelineService "reelforge/internal/service/pipeline"
)

// GenerateVideosRequest 生成场景视频请求
type GenerateVideosRequest struct {
	ID string `uri:"id" binding:"required"` // 项目ID（必填）
}

// GenerateVideosResponseData 生成场景视频响应数据
type GenerateVideosResponseData struct {
	ProjectID string                        `json:"project_id"` // 项目ID
	Results   []pipelineService.SceneResult `json:"results"`    // 每个场景的生成结果
	Succeeded int                           `json:"succeeded"`  // 成功数量
	Failed    int                           `json:"failed"`     // 失败数量
}

// GenerateSceneVideos 为所有场景生成视频
// @Summary      生成场景视频
// @Description  并发将所有已审核通过的场景图片转换为视频片段，返回逐场景的结果。部分失败时仍保留成功的片段。这是流水线的第四步。
// @Tags         流水线
// @Accept       json
// @Produce      json
// @Param        id  path      string  true  "项目ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      400  {object}  ErrorResponse  "请求参数错误"
// @Failure      404  {object}  ErrorResponse  "项目不存在"
// @Failure      412  {object}  ErrorResponse  "前置条件不满足（存在未审核通过的场景）"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{id}/videos [post]
func (h *Handler) GenerateSceneVideos(c *gin.Context) {
	var req GenerateVideosRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid project id",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	results, err := h.service.GenerateSceneVideos(ctx, req.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	succeeded := 0
	for _, r := range results {
		if r.Error == "" {
			succeeded++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "场景视频生成完成",
		"data": GenerateVideosResponseData{
			ProjectID: req.ID,
			Results:   results,
			Succeeded: succeeded,
			Failed:    len(results) - succeeded,
		},
	})
}
