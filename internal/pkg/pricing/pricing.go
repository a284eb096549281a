package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"reelforge/internal/config"
	"reelforge/internal/pkg/cache"
)

// 单价条目 key，与配置文件中 pricing.static 的 key 对应
const (
	ItemClaudeInputPerMillion  = "claude_input_per_million"
	ItemClaudeOutputPerMillion = "claude_output_per_million"
	ItemElevenLabsPlanMonthly  = "elevenlabs_plan_monthly"
	ItemElevenLabsPlanChars    = "elevenlabs_plan_characters"
	ItemShotstackPerMinute     = "shotstack_per_minute"
	ItemFalImage               = "fal_image"
	ItemFalVideoPerSecond      = "fal_video_per_second"
	ItemMusicPerTrack          = "music_per_track"
)

// Service 单价查询服务
// 查询顺序：Redis 缓存 → 实时价格端点 → 配置中的静态兜底价
// 任何一层失败都不阻塞流水线，只记日志后降级
type Service struct {
	endpoint   string
	cacheTTL   time.Duration
	static     map[string]float64
	cache      *cache.RedisCache
	httpClient *http.Client
}

// NewService 创建单价查询服务，redisCache 可为 nil（跳过缓存层）
func NewService(cfg *config.PricingConfig, redisCache *cache.RedisCache) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = cache.PricingCacheTTL
	}
	return &Service{
		endpoint: cfg.Endpoint,
		cacheTTL: ttl,
		static:   cfg.Static,
		cache:    redisCache,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// UnitPrice 查询单项价格
// 实时查询失败时回退到静态价格；静态价格也缺失时返回 0 并告警
func (s *Service) UnitPrice(ctx context.Context, item string) float64 {
	if s.cache != nil {
		var cached float64
		if err := s.cache.Get(ctx, cache.PricingCacheKey(item), &cached); err == nil {
			return cached
		}
	}

	if price, err := s.fetchLive(ctx, item); err == nil {
		if s.cache != nil {
			if err := s.cache.Set(ctx, cache.PricingCacheKey(item), price, s.cacheTTL); err != nil {
				log.Warn().Err(err).Str("item", item).Msg("写入价格缓存失败")
			}
		}
		return price
	} else if s.endpoint != "" {
		log.Warn().Err(err).Str("item", item).Msg("实时价格查询失败，使用静态兜底价")
	}

	if price, ok := s.static[item]; ok {
		return price
	}

	log.Warn().Str("item", item).Msg("未配置静态价格，按 0 计费")
	return 0
}

func (s *Service) fetchLive(ctx context.Context, item string) (float64, error) {
	if s.endpoint == "" {
		return 0, fmt.Errorf("pricing endpoint not configured")
	}

	url := fmt.Sprintf("%s?item=%s", s.endpoint, item)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("pricing endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	var result struct {
		Price float64 `json:"price"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, err
	}
	return result.Price, nil
}
