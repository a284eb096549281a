package elevenlabs

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

const providerName = "elevenlabs"

// Client ElevenLabs 客户端封装
// 用于语音合成（text-to-speech）与背景音乐生成（music）
// 参考: https://api.elevenlabs.io/docs
type Client struct {
	apiKey       string
	baseURL      string
	modelID      string
	outputFormat string
	stability    float64
	similarity   float64
	httpClient   *http.Client
}

// NewClient 创建 ElevenLabs 客户端
func NewClient(cfg *config.ElevenLabsConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ElevenLabs API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io"
	}

	modelID := cfg.ModelID
	if modelID == "" {
		modelID = "eleven_multilingual_v2"
	}

	outputFormat := cfg.OutputFormat
	if outputFormat == "" {
		outputFormat = "mp3_44100_128"
	}

	stability := cfg.Stability
	if stability == 0 {
		stability = 0.5
	}
	similarity := cfg.Similarity
	if similarity == 0 {
		similarity = 0.75
	}

	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		modelID:      modelID,
		outputFormat: outputFormat,
		stability:    stability,
		similarity:   similarity,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// SynthesizeResult 语音合成结果
type SynthesizeResult struct {
	Audio      []byte // 音频数据（二进制）
	Characters int    // 计费字符数
}

// Synthesize 合成语音
// text 中的停顿应已翻译为 ElevenLabs 原生的 SSML break 标签
func (c *Client) Synthesize(ctx context.Context, voiceID, text string) (*SynthesizeResult, error) {
	if voiceID == "" {
		return nil, fmt.Errorf("voice id is required")
	}

	reqBody := map[string]any{
		"text":     text,
		"model_id": c.modelID,
		"voice_settings": map[string]any{
			"stability":        c.stability,
			"similarity_boost": c.similarity,
		},
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s", c.baseURL, voiceID, c.outputFormat)
	audio, err := c.post(ctx, url, reqBody)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("voice_id", voiceID).
		Int("characters", len([]rune(text))).
		Int("audio_size", len(audio)).
		Msg("语音合成成功")

	return &SynthesizeResult{
		Audio:      audio,
		Characters: len([]rune(text)),
	}, nil
}

// ComposeMusic 生成背景音乐
func (c *Client) ComposeMusic(ctx context.Context, prompt string, lengthMs int) ([]byte, error) {
	if prompt == "" {
		return nil, fmt.Errorf("music prompt is required")
	}

	reqBody := map[string]any{
		"prompt":          prompt,
		"music_length_ms": lengthMs,
	}

	audio, err := c.post(ctx, c.baseURL+"/v1/music", reqBody)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("length_ms", lengthMs).
		Int("audio_size", len(audio)).
		Msg("背景音乐生成成功")

	return audio, nil
}

// post 发送 JSON 请求并返回原始响应字节
func (c *Client) post(ctx context.Context, url string, body any) ([]byte, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

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
