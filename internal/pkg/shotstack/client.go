package shotstack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"reelforge/internal/config"
	"reelforge/internal/pkg/apperr"
)

const providerName = "shotstack"

// RenderState 渲染任务的归一化状态
type RenderState string

const (
	StateProcessing RenderState = "processing"
	StateDone       RenderState = "done"
	StateFailed     RenderState = "failed"
)

// RenderStatus 渲染状态查询结果
type RenderStatus struct {
	State RenderState
	URL   string // State 为 done 时的成片地址
	Error string // State 为 failed 时的失败原因
}

// Client Shotstack 渲染服务客户端
type Client struct {
	apiKey     string
	baseURL    string
	env        string
	httpClient *http.Client
}

// NewClient 创建 Shotstack 客户端
func NewClient(cfg *config.ShotstackConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Shotstack API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.shotstack.io"
	}

	env := cfg.Env
	if env == "" {
		env = "v1"
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		env:        env,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// SubmitRender 提交渲染任务，返回 render id
// 任务为异步执行，进度需通过 GetRenderStatus 轮询
func (c *Client) SubmitRender(ctx context.Context, edit *Edit) (string, error) {
	jsonData, err := json.Marshal(edit)
	if err != nil {
		return "", fmt.Errorf("marshal edit: %w", err)
	}

	url := fmt.Sprintf("%s/%s/render", c.baseURL, c.env)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	respBody, status, err := c.do(req)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return "", apperr.NewUpstream(providerName, status, string(respBody))
	}

	var result struct {
		Success  bool `json:"success"`
		Response struct {
			ID string `json:"id"`
		} `json:"response"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parse render response: %w", err)
	}
	if !result.Success || result.Response.ID == "" {
		return "", apperr.NewUpstream(providerName, status, string(respBody))
	}

	log.Info().Str("render_id", result.Response.ID).Msg("渲染任务已提交")
	return result.Response.ID, nil
}

// GetRenderStatus 查询渲染任务状态
// Shotstack 的 queued/fetching/rendering/saving 统一归为 processing
func (c *Client) GetRenderStatus(ctx context.Context, renderID string) (*RenderStatus, error) {
	url := fmt.Sprintf("%s/%s/render/%s", c.baseURL, c.env, renderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	respBody, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apperr.NewUpstream(providerName, status, string(respBody))
	}

	var result struct {
		Response struct {
			Status string `json:"status"`
			URL    string `json:"url"`
			Error  string `json:"error"`
		} `json:"response"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parse status response: %w", err)
	}

	switch result.Response.Status {
	case "done":
		return &RenderStatus{State: StateDone, URL: result.Response.URL}, nil
	case "failed":
		return &RenderStatus{State: StateFailed, Error: result.Response.Error}, nil
	default:
		return &RenderStatus{State: StateProcessing}, nil
	}
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, apperr.WrapUpstream(providerName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, apperr.WrapUpstream(providerName, err)
	}
	return body, resp.StatusCode, nil
}
