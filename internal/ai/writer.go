package ai

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"reelforge/internal/ai/component"
	"reelforge/internal/config"
)

// ScriptWriter 脚本撰写链
// 工作流: 提示词 -> ChatModel -> 脚本文本 + token 用量
type ScriptWriter struct {
	chatModel model.BaseChatModel
}

// GenerateRequest 脚本生成请求
type GenerateRequest struct {
	SystemPrompt string // 系统提示词（角色设定与输出契约）
	UserPrompt   string // 用户提示词（主题、场景数等）
}

// GenerateResponse 脚本生成响应
type GenerateResponse struct {
	Content      string // 模型原始输出
	PromptTokens int    // 输入 token 数
	OutputTokens int    // 输出 token 数
}

// NewScriptWriter 创建脚本撰写链
func NewScriptWriter(ctx context.Context, cfg *config.AIConfig) (*ScriptWriter, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &ScriptWriter{
		chatModel: chatModel,
	}, nil
}

// Generate 同步生成脚本
func (w *ScriptWriter) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	messages := []*schema.Message{
		schema.SystemMessage(req.SystemPrompt),
		schema.UserMessage(req.UserPrompt),
	}

	resp, err := w.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, err
	}

	// 提取 token 使用量
	var promptTokens, outputTokens int
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		promptTokens = resp.ResponseMeta.Usage.PromptTokens
		outputTokens = resp.ResponseMeta.Usage.CompletionTokens
	}

	return &GenerateResponse{
		Content:      resp.Content,
		PromptTokens: promptTokens,
		OutputTokens: outputTokens,
	}, nil
}
