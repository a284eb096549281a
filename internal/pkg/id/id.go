package id

import (
	"github.com/google/uuid"
)

// New 生成 UUID 字符串，项目、素材、渲染任务的主键都用它
func New() string {
	return uuid.New().String()
}
