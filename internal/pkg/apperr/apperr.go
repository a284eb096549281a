package apperr

import (
	"errors"
	"fmt"
)

// 错误分类（参考 docs 中的流水线错误模型）：
//   - ValidationError: 请求参数缺失/非法，禁止重试
//   - NotFoundError: 项目/场景/资源不存在
//   - PreconditionFailed: 阶段前置条件不满足（如场景未全部审核通过）
//   - UpstreamError: 第三方 API 非 2xx 或响应格式错误
//   - StorageError: 存储读写失败（删除不存在的对象不算错误）
//   - PollingTimeout: 渲染轮询超出次数预算
//   - RenderAlreadyInProgress: 项目已有进行中的渲染任务
//   - UnsupportedURLFormat: 无法从 URL 还原存储路径

var (
	ErrPollingTimeout          = errors.New("render polling timed out")
	ErrRenderAlreadyInProgress = errors.New("render already in progress")
)

// ValidationError 请求参数错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation 创建参数错误
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError 资源不存在
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFound 创建资源不存在错误
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// PreconditionError 阶段前置条件不满足
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string { return e.Message }

// NewPrecondition 创建前置条件错误
func NewPrecondition(format string, args ...any) *PreconditionError {
	return &PreconditionError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError 第三方 API 调用失败
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstream 创建上游 API 错误（非 2xx 响应）
func NewUpstream(provider string, status int, body string) *UpstreamError {
	return &UpstreamError{Provider: provider, Status: status, Body: body}
}

// WrapUpstream 包装上游网络/解析错误
func WrapUpstream(provider string, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Err: err}
}

// StorageError 存储操作失败
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// WrapStorage 包装存储错误
func WrapStorage(op, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}

// UnsupportedURLFormatError URL 不是本网关产出的公开 URL 形态
type UnsupportedURLFormatError struct {
	URL string
}

func (e *UnsupportedURLFormatError) Error() string {
	return fmt.Sprintf("unsupported url format: %s", e.URL)
}

// NewUnsupportedURLFormat 创建 URL 格式错误
func NewUnsupportedURLFormat(url string) *UnsupportedURLFormatError {
	return &UnsupportedURLFormatError{URL: url}
}

// IsValidation 判断是否为参数错误
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsNotFound 判断是否为资源不存在
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsPrecondition 判断是否为前置条件错误
func IsPrecondition(err error) bool {
	var e *PreconditionError
	return errors.As(err, &e)
}

// IsUpstream 判断是否为上游 API 错误
func IsUpstream(err error) bool {
	var e *UpstreamError
	return errors.As(err, &e)
}

// IsUnsupportedURLFormat 判断是否为 URL 格式错误
func IsUnsupportedURLFormat(err error) bool {
	var e *UnsupportedURLFormatError
	return errors.As(err, &e)
}
