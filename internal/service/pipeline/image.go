package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"reelforge/internal/model/library"
	model "reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/apperr"
	"reelforge/internal/pkg/costs"
	"reelforge/internal/pkg/pricing"
	"reelforge/internal/pkg/scripttools"
)

// GenerateSceneImage 阶段三：生成或重新生成单个场景的首帧图片
// 提示词折叠：场景画面描述 + 配音语境 + 地点描述 + 与上一场景的连续性指令 + 动作引导
// 重新生成必定将该场景 approved 重置为 false，其余场景不受影响
func (s *Service) GenerateSceneImage(ctx context.Context, projectID string, sceneID int) (*model.Scene, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	sc, err := s.scenes.FindOne(ctx, projectID, sceneID)
	if err != nil {
		return nil, err
	}

	location, err := s.resolveSceneLocation(ctx, p, sc)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}

	// 连续性：与紧邻前一个场景的地点比较
	sameLocation := false
	if sc.ID > 1 {
		prev, err := s.scenes.FindOne(ctx, projectID, sc.ID-1)
		if err == nil {
			prevLoc, _ := s.resolveSceneLocation(ctx, p, prev)
			sameLocation = location != nil && prevLoc != nil && location.ID == prevLoc.ID
		}
	}

	var action *library.Action
	if sc.ActionID != "" {
		if a, err := s.actions.FindByID(ctx, sc.ActionID); err == nil {
			action = a
		}
	}

	prompt := scripttools.NewImagePromptBuilder().Build(scripttools.ImagePromptInput{
		Voiceover:    sc.Voiceover,
		ImagePrompt:  sc.ImagePrompt,
		Location:     location,
		SameLocation: sameLocation,
		FirstScene:   sc.ID == 1,
		Action:       action,
	})

	tempURL, err := s.visual.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, err
	}

	// 供应商地址不可长期访问，必须立即下载转存
	data, err := s.visual.Download(ctx, tempURL)
	if err != nil {
		return nil, err
	}

	path := newAssetPath(projectID, "images", fmt.Sprintf("scene_%d.png", sc.ID))
	url, err := s.store.Upload(ctx, path, bytes.NewReader(data), "image/png")
	if err != nil {
		return nil, err
	}

	// 替换旧图片
	if sc.ImageURL != "" {
		s.deleteStoredAsset(ctx, sc.ImageURL)
	}

	// 地点样例图登记：新图追加，被替换的旧图移除
	if location != nil {
		if err := s.locations.AppendSampleImage(ctx, location.ID, url); err != nil {
			log.Warn().Err(err).Str("location_id", location.ID).Msg("登记地点样例图失败")
		}
		if sc.ImageURL != "" {
			if err := s.locations.RemoveSampleImage(ctx, location.ID, sc.ImageURL); err != nil {
				log.Warn().Err(err).Str("location_id", location.ID).Msg("移除地点样例图失败")
			}
		}
	}

	fields := bson.M{
		"image_url": url,
		"approved":  false,
	}
	if err := s.scenes.UpdateFields(ctx, projectID, sc.ID, fields); err != nil {
		return nil, err
	}

	price := s.pricer.UnitPrice(ctx, pricing.ItemFalImage)
	s.addCost(ctx, projectID, costs.ProviderFalImages, costs.StageImages, price)

	if action != nil {
		if err := s.actions.IncrementUsage(ctx, action.ID); err != nil {
			log.Warn().Err(err).Str("action_id", action.ID).Msg("累加动作使用次数失败")
		}
	}

	log.Info().
		Str("project_id", projectID).
		Int("scene_id", sc.ID).
		Msg("场景图片生成完成")

	return s.scenes.FindOne(ctx, projectID, sc.ID)
}
