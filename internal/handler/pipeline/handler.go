package pipeline

import (
	pipelineService "reelforge/internal/service/pipeline"
)

// Handler 流水线处理器
// 所有项目/场景/阶段相关的Handler方法都通过这个结构体访问Service
type Handler struct {
	service *pipelineService.Service
}

// NewHandler 创建流水线处理器
func NewHandler(service *pipelineService.Service) *Handler {
	return &Handler{
		service: service,
	}
}
