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
	"reelforge/internal/pkg/scripttools"
)

// GenerateVoiceover 阶段二：合成配音
// 前置条件：脚本非空；voice_id 以角色库为准，不信任项目里的快照
// 成功后写入独立的配音资产记录并指向项目，status=voiceover_generated、current_step=3
func (s *Service) GenerateVoiceover(ctx context.Context, projectID string) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Script) == "" {
		return nil, apperr.NewPrecondition("project %s has no script, run script generation first", projectID)
	}
	if p.Character == nil {
		return nil, apperr.NewValidation("character", "project has no selected character")
	}

	character, err := s.characters.FindByID(ctx, p.Character.CharacterID)
	if err != nil {
		return nil, err
	}
	if character.VoiceID == "" {
		return nil, apperr.NewPrecondition("character %s has no voice_id", character.ID)
	}

	// 停顿标记翻译为语音合成服务的原生 break 标签
	speechText := scripttools.TranslatePauses(p.Script)

	result, err := s.speech.Synthesize(ctx, character.VoiceID, speechText)
	if err != nil {
		s.failProject(ctx, projectID, fmt.Errorf("voiceover synthesis failed: %w", err))
		return nil, err
	}

	path := newAssetPath(projectID, "voiceover", "voiceover.mp3")
	url, err := s.store.Upload(ctx, path, bytes.NewReader(result.Audio), "audio/mpeg")
	if err != nil {
		s.failProject(ctx, projectID, fmt.Errorf("voiceover upload failed: %w", err))
		return nil, err
	}

	// 重新生成时替换旧配音：先删存储对象再删记录
	if p.VoiceoverID != "" {
		s.removeAudioAsset(ctx, p.VoiceoverID)
	}

	rate := s.pricer.UnitPrice(ctx, pricing.ItemElevenLabsPlanMonthly)
	included := s.pricer.UnitPrice(ctx, pricing.ItemElevenLabsPlanChars)
	cost := costs.CharacterCost(result.Characters, rate, int(included))

	asset := &model.AudioAsset{
		ID:          id.New(),
		ProjectID:   projectID,
		SessionID:   p.SessionID,
		Kind:        model.AudioKindVoiceover,
		URL:         url,
		StoragePath: path,
		Cost:        cost,
		Metadata: map[string]any{
			"voice_id":   character.VoiceID,
			"characters": result.Characters,
		},
	}
	if err := s.audioAssets.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("persist voiceover asset: %w", err)
	}

	fields := bson.M{
		"voiceover_id":  asset.ID,
		"voiceover_url": url,
		"status":        model.StatusVoiceoverGenerated,
		"current_step":  model.StepImages,
		"error":         "",
	}
	if err := s.projects.UpdateFields(ctx, projectID, fields); err != nil {
		return nil, err
	}

	s.addCost(ctx, projectID, costs.ProviderElevenLabs, costs.StageVoiceover, cost)

	log.Info().
		Str("project_id", projectID).
		Str("voiceover_id", asset.ID).
		Int("characters", result.Characters).
		Msg("配音生成完成")

	return s.projects.FindByID(ctx, projectID)
}

// removeAudioAsset 删除音频资产记录及其存储对象
func (s *Service) removeAudioAsset(ctx context.Context, assetID string) {
	asset, err := s.audioAssets.FindByID(ctx, assetID)
	if err != nil {
		if !apperr.IsNotFound(err) {
			log.Warn().Err(err).Str("asset_id", assetID).Msg("查询旧音频资产失败")
		}
		return
	}
	s.deleteStoredAsset(ctx, asset.URL)
	if err := s.audioAssets.Delete(ctx, assetID); err != nil && !apperr.IsNotFound(err) {
		log.Warn().Err(err).Str("asset_id", assetID).Msg("删除旧音频资产记录失败")
	}
}
