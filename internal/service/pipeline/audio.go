package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	model "reelforge/internal/model/pipeline"
)

// ListAudioAssets 查询项目的音频资产，kind 为空时返回全部
func (s *Service) ListAudioAssets(ctx context.Context, projectID string, kind model.AudioAssetKind) ([]*model.AudioAsset, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.audioAssets.FindByProject(ctx, projectID, kind)
}

// DeleteAudioAsset 删除音频资产（记录与存储对象）
// 若该资产正被项目选用，同时清除项目上的指向
func (s *Service) DeleteAudioAsset(ctx context.Context, assetID string) error {
	asset, err := s.audioAssets.FindByID(ctx, assetID)
	if err != nil {
		return err
	}

	p, err := s.projects.FindByID(ctx, asset.ProjectID)
	if err == nil {
		fields := bson.M{}
		if p.VoiceoverID == asset.ID {
			fields["voiceover_id"] = ""
			fields["voiceover_url"] = ""
		}
		if p.BackgroundMusicID == asset.ID {
			fields["background_music_id"] = ""
			fields["background_music_url"] = ""
		}
		if len(fields) > 0 {
			if err := s.projects.UpdateFields(ctx, p.ID, fields); err != nil {
				log.Warn().Err(err).Str("project_id", p.ID).Msg("清除项目音频指向失败")
			}
		}
	}

	s.deleteStoredAsset(ctx, asset.URL)
	return s.audioAssets.Delete(ctx, assetID)
}
