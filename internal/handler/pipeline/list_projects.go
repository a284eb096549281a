package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListProjectsRequest 项目列表请求
type ListProjectsRequest struct {
	Status   string `form:"status"`    // 按状态过滤（可选）
	Page     int64  `form:"page"`      // 页码（1起，默认1）
	PageSize int64  `form:"page_size"` // 每页数量（默认20）
}

// ListProjectsResponseData 项目列表响应数据
type ListProjectsResponseData struct {
	Projects []ProjectInfo `json:"projects"` // 项目列表
	Total    int64         `json:"total"`    // 总数
	Page     int64         `json:"page"`     // 当前页码
	PageSize int64         `json:"page_size"` // 每页数量
}

// ListProjects 获取项目列表
// @Summary      项目列表
// @Description  分页获取项目列表，按创建时间倒序，支持按状态过滤
// @Tags         项目管理
// @Accept       json
// @Produce      json
// @Param        status     query     string  false  "项目状态过滤"
// @Param        page       query     int     false  "页码（默认1）"
// @Param        page_size  query     int     false  "每页数量（默认20）"
// @Success      200        {object}  map[string]interface{}  "成功响应"
// @Failure      400        {object}  ErrorResponse  "请求参数错误"
// @Failure      500        {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects [get]
func (h *Handler) ListProjects(c *gin.Context) {
	var req ListProjectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid query parameters",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	projects, total, err := h.service.ListProjects(ctx, req.Status, req.Page, req.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": ListProjectsResponseData{
			Projects: toProjectInfoList(projects),
			Total:    total,
			Page:     req.Page,
			PageSize: req.PageSize,
		},
	})
}
