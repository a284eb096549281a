package auth

import (
	"reelforge/internal/service"
)

// Handler 认证接口处理器
type Handler struct {
	authService *service.AuthService
}

// NewHandler 创建认证处理器
func NewHandler(authService *service.AuthService) *Handler {
	return &Handler{
		authService: authService,
	}
}
