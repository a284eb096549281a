package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	model "reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/apperr"
	"reelforge/internal/pkg/costs"
	"reelforge/internal/pkg/pricing"
	"reelforge/internal/pkg/scripttools"
)

// SceneResult 单场景生成结果，Error 非空表示该场景失败
type SceneResult struct {
	SceneID  int    `json:"scene_id"`
	VideoURL string `json:"video_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// GenerateSceneVideos 阶段四：为所有场景生成视频
// 前置条件：全部场景 approved=true，任何一个未通过都整体拒绝
// 场景间并发执行，单场景失败不取消其余场景，结果聚合返回
func (s *Service) GenerateSceneVideos(ctx context.Context, projectID string) ([]SceneResult, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	scenes, err := s.scenes.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(scenes) == 0 {
		return nil, apperr.NewPrecondition("project %s has no scenes", projectID)
	}

	var unapproved []int
	for _, sc := range scenes {
		if !sc.Approved {
			unapproved = append(unapproved, sc.ID)
		}
		if sc.ImageURL == "" {
			return nil, apperr.NewPrecondition("scene %d has no image", sc.ID)
		}
	}
	if len(unapproved) > 0 {
		return nil, apperr.NewPrecondition("not all scenes approved: %v", unapproved)
	}

	// 使用 channel 控制并发数
	semaphore := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make([]SceneResult, len(scenes))
	videoSeconds := 0

	for i, sc := range scenes {
		wg.Add(1)
		go func(i int, sc *model.Scene) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			url, err := s.generateSingleSceneVideo(ctx, p, sc)
			if err != nil {
				log.Error().Err(err).
					Str("project_id", projectID).
					Int("scene_id", sc.ID).
					Msg("场景视频生成失败")
				mu.Lock()
				results[i] = SceneResult{SceneID: sc.ID, Error: err.Error()}
				mu.Unlock()
				return
			}

			mu.Lock()
			results[i] = SceneResult{SceneID: sc.ID, VideoURL: url}
			videoSeconds += sc.Duration
			mu.Unlock()
		}(i, sc)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		log.Warn().
			Str("project_id", projectID).
			Int("total", len(scenes)).
			Int("failed", failed).
			Msg("部分场景视频生成失败")
	}

	// 成本按成功生成的视频秒数计
	if videoSeconds > 0 {
		rate := s.pricer.UnitPrice(ctx, pricing.ItemFalVideoPerSecond)
		s.addCost(ctx, projectID, costs.ProviderFalVideos, costs.StageVideos, float64(videoSeconds)*rate)
	}

	// 全部成功才推进步骤计数，部分失败停留在当前步骤供重试
	if failed == 0 {
		fields := bson.M{"current_step": model.StepAssembly, "error": ""}
		if err := s.projects.UpdateFields(ctx, projectID, fields); err != nil {
			return results, err
		}
	}

	return results, nil
}

// generateSingleSceneVideo 生成单个场景的视频并转存
func (s *Service) generateSingleSceneVideo(ctx context.Context, p *model.Project, sc *model.Scene) (string, error) {
	camera, motion := s.sceneMotionRefs(ctx, sc)
	motionPrompt := scripttools.BuildMotionPrompt(sc.MotionPrompt, camera, motion)

	tempURL, err := s.visual.ImageToVideo(ctx, sc.ImageURL, motionPrompt, sc.Duration)
	if err != nil {
		return "", err
	}

	data, err := s.visual.Download(ctx, tempURL)
	if err != nil {
		return "", err
	}

	path := newAssetPath(p.ID, "videos", fmt.Sprintf("scene_%d.mp4", sc.ID))
	url, err := s.store.Upload(ctx, path, bytes.NewReader(data), "video/mp4")
	if err != nil {
		return "", err
	}

	if sc.VideoURL != "" {
		s.deleteStoredAsset(ctx, sc.VideoURL)
	}

	if err := s.scenes.UpdateFields(ctx, p.ID, sc.ID, bson.M{"video_url": url}); err != nil {
		return "", err
	}
	return url, nil
}
