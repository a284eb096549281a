package auth

import (
	"time"

	"reelforge/internal/model/auth"
	httputil "reelforge/internal/pkg/http"
)

// ErrorResponse 错误响应（swagger 引用）
type ErrorResponse = httputil.ErrorResponse

// toUserInfo 将用户实体转换为对外 DTO，时间统一 RFC3339
func toUserInfo(user *auth.User) UserInfo {
	info := UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		Status:   string(user.Status),
	}

	if user.Profile != nil {
		info.Profile = &UserProfile{
			Nickname: user.Profile.Nickname,
			Avatar:   user.Profile.Avatar,
			Phone:    user.Profile.Phone,
		}
	}

	if user.LastLoginAt != nil {
		info.LastLoginAt = user.LastLoginAt.Format(time.RFC3339)
	}
	info.CreatedAt = user.CreatedAt.Format(time.RFC3339)

	return info
}
