package config

import (
	"errors"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	AI         AIConfig         `mapstructure:"ai"`
	Log        LogConfig        `mapstructure:"log"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Storage    StorageConfig    `mapstructure:"storage"`
	ElevenLabs ElevenLabsConfig `mapstructure:"elevenlabs"`
	Fal        FalConfig        `mapstructure:"fal"`
	Shotstack  ShotstackConfig  `mapstructure:"shotstack"`
	Pricing    PricingConfig    `mapstructure:"pricing"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AIConfig 脚本生成 LLM 配置（eino ChatModel）
type AIConfig struct {
	Provider string          `mapstructure:"provider"` // openai / azure / ark
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`          // JWT密钥
	AccessTokenExpiry time.Duration `mapstructure:"access_token_expiry"` // Access Token过期时间
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath      string `mapstructure:"base_path"`      // 基础路径
	BaseURL       string `mapstructure:"base_url"`       // 基础URL（用于生成访问URL）
	PresignExpiry int    `mapstructure:"presign_expiry"` // 预签名URL过期时间（秒）
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`          // OSS端点
	Bucket          string `mapstructure:"bucket"`            // Bucket名称
	AccessKeyID     string `mapstructure:"access_key_id"`     // AccessKey ID
	AccessKeySecret string `mapstructure:"access_key_secret"` // AccessKey Secret
	PresignExpiry   int    `mapstructure:"presign_expiry"`    // 预签名URL过期时间（秒）
}

// ElevenLabsConfig ElevenLabs 语音/音乐合成配置
type ElevenLabsConfig struct {
	APIKey       string  `mapstructure:"api_key"`
	BaseURL      string  `mapstructure:"base_url"`      // 默认: https://api.elevenlabs.io
	ModelID      string  `mapstructure:"model_id"`      // TTS 模型，默认: eleven_multilingual_v2
	OutputFormat string  `mapstructure:"output_format"` // 默认: mp3_44100_128
	Stability    float64 `mapstructure:"stability"`
	Similarity   float64 `mapstructure:"similarity"`
}

// FalConfig fal.ai 图片/视频生成配置
type FalConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`    // 默认: https://fal.run
	ImageModel string `mapstructure:"image_model"` // 默认: fal-ai/flux/dev
	VideoModel string `mapstructure:"video_model"` // 默认: fal-ai/kling-video/v1.6/standard/image-to-video
}

// ShotstackConfig Shotstack 视频合成配置
type ShotstackConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`   // 默认: https://api.shotstack.io
	Env        string `mapstructure:"env"`        // stage / v1
	Resolution string `mapstructure:"resolution"` // 默认: hd
}

// PricingConfig 价格查询配置
// 优先调用在线价格接口，失败时回退到静态单价
type PricingConfig struct {
	Endpoint string             `mapstructure:"endpoint"`  // 在线价格接口（可选）
	CacheTTL time.Duration      `mapstructure:"cache_ttl"` // Redis 缓存时间
	Static   map[string]float64 `mapstructure:"static"`    // 静态单价兜底
}

// PipelineConfig 视频流水线配置
type PipelineConfig struct {
	PollInterval     time.Duration `mapstructure:"poll_interval"`     // 渲染状态轮询间隔
	PollMaxAttempts  int           `mapstructure:"poll_max_attempts"` // 轮询次数上限
	SceneConcurrency int           `mapstructure:"scene_concurrency"` // 场景级并发上限
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if c.Pipeline.PollMaxAttempts < 0 {
		return errors.New("pipeline.poll_max_attempts must be >= 0")
	}

	return nil
}
