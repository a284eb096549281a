package fal

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

const providerName = "fal"

// Client fal.ai 客户端封装
// 通过同步端点生成场景首帧图片与图生视频
type Client struct {
	apiKey     string
	baseURL    string
	imageModel string
	videoModel string
	httpClient *http.Client
}

// NewClient 创建 fal 客户端
func NewClient(cfg *config.FalConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("fal API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://fal.run"
	}

	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = "fal-ai/flux/dev"
	}

	videoModel := cfg.VideoModel
	if videoModel == "" {
		videoModel = "fal-ai/kling-video/v1.6/standard/image-to-video"
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		imageModel: imageModel,
		videoModel: videoModel,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}, nil
}

// GenerateImage 生成场景首帧图片，返回临时下载地址
// fal 返回的 URL 不可长期访问，调用方需立即下载并转存
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("image prompt is required")
	}

	reqBody := map[string]any{
		"prompt":     prompt,
		"image_size": "portrait_16_9",
	}

	respBody, err := c.post(ctx, fmt.Sprintf("%s/%s", c.baseURL, c.imageModel), reqBody)
	if err != nil {
		return "", err
	}

	var result struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parse image response: %w", err)
	}
	if len(result.Images) == 0 || result.Images[0].URL == "" {
		return "", apperr.NewUpstream(providerName, http.StatusOK, "response contains no image url")
	}

	log.Info().Str("model", c.imageModel).Msg("图片生成成功")
	return result.Images[0].URL, nil
}

// ImageToVideo 以首帧图片为输入生成场景视频，返回临时下载地址
func (c *Client) ImageToVideo(ctx context.Context, imageURL, motionPrompt string, durationSec int) (string, error) {
	if imageURL == "" {
		return "", fmt.Errorf("image url is required")
	}

	reqBody := map[string]any{
		"image_url": imageURL,
		"prompt":    motionPrompt,
		"duration":  fmt.Sprintf("%d", durationSec),
	}

	respBody, err := c.post(ctx, fmt.Sprintf("%s/%s", c.baseURL, c.videoModel), reqBody)
	if err != nil {
		return "", err
	}

	var result struct {
		Video struct {
			URL string `json:"url"`
		} `json:"video"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parse video response: %w", err)
	}
	if result.Video.URL == "" {
		return "", apperr.NewUpstream(providerName, http.StatusOK, "response contains no video url")
	}

	log.Info().Str("model", c.videoModel).Int("duration", durationSec).Msg("视频生成成功")
	return result.Video.URL, nil
}

// Download 下载生成结果
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.WrapUpstream(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.NewUpstream(providerName, resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.WrapUpstream(providerName, err)
	}
	return data, nil
}

func (c *Client) post(ctx context.Context, url string, body any) ([]byte, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	log.Debug().Str("url", url).Msg("发送 fal 请求")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.WrapUpstream(providerName, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.WrapUpstream(providerName, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.NewUpstream(providerName, resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
