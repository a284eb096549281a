package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pipelineModel "reelforge/internal/model/pipeline"
)

// ListAudioAssetsURI 项目定位参数
type ListAudioAssetsURI struct {
	ID string `uri:"id" binding:"required"` // 项目ID（必填）
}

// ListAudioAssetsQuery 音频资产过滤参数
type ListAudioAssetsQuery struct {
	Kind string `form:"kind"` // 资产类型过滤：voiceover, music（可选）
}

// ListAudioAssetsResponseData 音频资产列表响应数据
type ListAudioAssetsResponseData struct {
	ProjectID string           `json:"project_id"` // 项目ID
	Assets    []AudioAssetInfo `json:"assets"`     // 资产列表
	Count     int              `json:"count"`      // 资产数量
}

// ListAudioAssets 获取项目的音频资产列表
// @Summary      音频资产列表
// @Description  获取项目下的配音和背景音乐资产，按创建时间倒序，支持按类型过滤
// @Tags         音频资产
// @Accept       json
// @Produce      json
// @Param        id    path      string  true   "项目ID"
// @Param        kind  query     string  false  "资产类型过滤：voiceover, music"
// @Success      200   {object}  map[string]interface{}  "成功响应"
// @Failure      400   {object}  ErrorResponse  "请求参数错误"
// @Failure      500   {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{id}/audio-assets [get]
func (h *Handler) ListAudioAssets(c *gin.Context) {
	var uri ListAudioAssetsURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid project id",
			Detail:  err.Error(),
		})
		return
	}

	var query ListAudioAssetsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid query parameters",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	assets, err := h.service.ListAudioAssets(ctx, uri.ID, pipelineModel.AudioAssetKind(query.Kind))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": ListAudioAssetsResponseData{
			ProjectID: uri.ID,
			Assets:    toAudioAssetInfoList(assets),
			Count:     len(assets),
		},
	})
}

// DeleteAudioAssetRequest 删除音频资产请求
type DeleteAudioAssetRequest struct {
	ID string `uri:"id" binding:"required"` // 资产ID（必填）
}

// DeleteAudioAsset 删除音频资产
// @Summary      删除音频资产
// @Description  删除音频资产记录并清理对象存储中的文件；若资产正被项目选用，会同时清空项目上的引用
// @Tags         音频资产
// @Accept       json
// @Produce      json
// @Param        id  path      string  true  "资产ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      400  {object}  ErrorResponse  "请求参数错误"
// @Failure      404  {object}  ErrorResponse  "资产不存在"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/audio-assets/{id} [delete]
func (h *Handler) DeleteAudioAsset(c *gin.Context) {
	var req DeleteAudioAssetRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid asset id",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	if err := h.service.DeleteAudioAsset(ctx, req.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "音频资产删除成功",
		"data": gin.H{
			"asset_id": req.ID,
		},
	})
}
