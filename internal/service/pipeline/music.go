package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	model "reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/apperr"
	"reelforge/internal/pkg/costs"
	"reelforge/internal/pkg/id"
	"reelforge/internal/pkg/pricing"
)

// MusicInput 背景音乐入参
// AssetID 非空时选用已有音乐资产（指针拷贝，不生成）
// 否则按 Prompt（缺省时回退到项目的 background_music_prompt）生成新音乐
type MusicInput struct {
	AssetID string
	Prompt  string
}

// GenerateMusic 选定或生成背景音乐
// 音乐时长按全部场景时长之和计算
func (s *Service) GenerateMusic(ctx context.Context, projectID string, in MusicInput) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if in.AssetID != "" {
		return s.selectMusic(ctx, p, in.AssetID)
	}

	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		prompt = p.BackgroundMusicPrompt
	}
	if prompt == "" {
		return nil, apperr.NewValidation("prompt", "music prompt is required")
	}

	scenes, err := s.scenes.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	totalSeconds := 0
	for _, sc := range scenes {
		totalSeconds += sc.Duration
	}
	if totalSeconds <= 0 {
		return nil, apperr.NewPrecondition("project %s has no scenes to score", projectID)
	}

	audio, err := s.speech.ComposeMusic(ctx, prompt, totalSeconds*1000)
	if err != nil {
		s.failProject(ctx, projectID, fmt.Errorf("music generation failed: %w", err))
		return nil, err
	}

	path := newAssetPath(projectID, "music", "music.mp3")
	url, err := s.store.Upload(ctx, path, bytes.NewReader(audio), "audio/mpeg")
	if err != nil {
		s.failProject(ctx, projectID, fmt.Errorf("music upload failed: %w", err))
		return nil, err
	}

	cost := s.pricer.UnitPrice(ctx, pricing.ItemMusicPerTrack)

	asset := &model.AudioAsset{
		ID:          id.New(),
		ProjectID:   projectID,
		SessionID:   p.SessionID,
		Kind:        model.AudioKindMusic,
		URL:         url,
		StoragePath: path,
		Cost:        cost,
		Metadata: map[string]any{
			"prompt":     prompt,
			"length_sec": totalSeconds,
		},
	}
	if err := s.audioAssets.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("persist music asset: %w", err)
	}

	fields := bson.M{
		"background_music_id":     asset.ID,
		"background_music_url":    url,
		"background_music_prompt": prompt,
		"error":                   "",
	}
	if err := s.projects.UpdateFields(ctx, projectID, fields); err != nil {
		return nil, err
	}

	s.addCost(ctx, projectID, costs.ProviderElevenLabs, costs.StageAssembly, cost)

	log.Info().
		Str("project_id", projectID).
		Str("music_id", asset.ID).
		Int("length_sec", totalSeconds).
		Msg("背景音乐生成完成")

	return s.projects.FindByID(ctx, projectID)
}

// selectMusic 指向已有音乐资产，不触发生成也不记成本
func (s *Service) selectMusic(ctx context.Context, p *model.Project, assetID string) (*model.Project, error) {
	asset, err := s.audioAssets.FindByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset.Kind != model.AudioKindMusic {
		return nil, apperr.NewValidation("asset_id", "asset is not a music track")
	}

	fields := bson.M{
		"background_music_id":  asset.ID,
		"background_music_url": asset.URL,
	}
	if err := s.projects.UpdateFields(ctx, p.ID, fields); err != nil {
		return nil, err
	}
	return s.projects.FindByID(ctx, p.ID)
}
