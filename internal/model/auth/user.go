package auth

import (
	"time"
)

// User 用户实体
// ID 使用 UUID 字符串，避免 ObjectID 在 API 层的转换成本
type User struct {
	ID          string       `bson:"_id,omitempty" json:"id"`
	Username    string       `bson:"username" json:"username"` // 唯一
	Email       string       `bson:"email" json:"email"`       // 唯一
	Password    string       `bson:"password" json:"-"`        // bcrypt 哈希，绝不外发
	Role        UserRole     `bson:"role" json:"role"`
	Status      UserStatus   `bson:"status" json:"status"`
	Profile     *UserProfile `bson:"profile,omitempty" json:"profile,omitempty"`
	LastLoginAt *time.Time   `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updated_at"`
}

// UserProfile 用户资料
type UserProfile struct {
	Nickname string `bson:"nickname,omitempty" json:"nickname,omitempty"`
	Avatar   string `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// UserRole 用户角色
type UserRole string

const (
	RoleAdmin    UserRole = "admin"    // 管理员
	RoleEditor   UserRole = "editor"   // 内容编辑，负责发起与调整生成项目
	RoleReviewer UserRole = "reviewer" // 审核人员，负责场景审批
)

// IsValid 检查角色是否有效
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleReviewer
}

// String 返回角色字符串
func (r UserRole) String() string {
	return string(r)
}

// UserStatus 用户状态
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"   // 可登录
	UserStatusInactive UserStatus = "inactive" // 待激活
	UserStatusBanned   UserStatus = "banned"   // 禁用
)

// IsValid 检查状态是否有效
func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusInactive || s == UserStatusBanned
}

// String 返回状态字符串
func (s UserStatus) String() string {
	return string(s)
}
