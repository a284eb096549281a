package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	model "reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/apperr"
	"reelforge/internal/pkg/costs"
	"reelforge/internal/pkg/id"
	"reelforge/internal/pkg/pricing"
	"reelforge/internal/pkg/shotstack"
)

// AssembleVideo 阶段五：提交最终合成渲染
// 前置条件：已有配音、全部场景视频齐备、该项目没有进行中的渲染任务
// 同步落库 status=rendering 与 render_id 后启动后台轮询，立即返回
func (s *Service) AssembleVideo(ctx context.Context, projectID string) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.VoiceoverURL == "" {
		return nil, apperr.NewPrecondition("project %s has no voiceover", projectID)
	}

	active, err := s.renderJobs.FindActiveByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, apperr.ErrRenderAlreadyInProgress
	}

	scenes, err := s.scenes.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(scenes) == 0 {
		return nil, apperr.NewPrecondition("project %s has no scenes", projectID)
	}
	// 图片重生成会把 approved 重置，旧视频在重新审批前不得进入合成
	var unapproved []int
	for _, sc := range scenes {
		if !sc.Approved {
			unapproved = append(unapproved, sc.ID)
		}
		if sc.VideoURL == "" {
			return nil, apperr.NewPrecondition("scene %d has no video", sc.ID)
		}
	}
	if len(unapproved) > 0 {
		return nil, apperr.NewPrecondition("not all scenes approved: %v", unapproved)
	}

	edit := s.buildTimeline(p, scenes)

	renderID, err := s.renderer.SubmitRender(ctx, edit)
	if err != nil {
		s.failProject(ctx, projectID, fmt.Errorf("render submission failed: %w", err))
		return nil, err
	}

	// 渲染标识与状态同步落库后才返回调用方
	fields := bson.M{
		"render_id":    renderID,
		"status":       model.StatusRendering,
		"current_step": model.StepAssembly,
		"error":        "",
	}
	if err := s.projects.UpdateFields(ctx, projectID, fields); err != nil {
		return nil, err
	}

	job := &model.RenderJob{
		ID:        id.New(),
		ProjectID: projectID,
		RenderID:  renderID,
		Status:    model.RenderJobPending,
	}
	if err := s.renderJobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("persist render job: %w", err)
	}

	totalSeconds := 0
	for _, sc := range scenes {
		totalSeconds += sc.Duration
	}
	rate := s.pricer.UnitPrice(ctx, pricing.ItemShotstackPerMinute)
	s.addCost(ctx, projectID, costs.ProviderShotstack, costs.StageAssembly, costs.RenderMinuteCost(float64(totalSeconds), rate))

	// 完成轮询与请求解耦，后台独立推进
	s.poller.Start(job)

	log.Info().
		Str("project_id", projectID).
		Str("render_id", renderID).
		Int("scenes", len(scenes)).
		Msg("合成渲染已提交")

	return s.projects.FindByID(ctx, projectID)
}

// GetRenderStatus 查询项目当前/最近的渲染任务
func (s *Service) GetRenderStatus(ctx context.Context, projectID string) (*model.Project, *model.RenderJob, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if p.RenderID == "" {
		return p, nil, nil
	}

	job, err := s.renderJobs.FindActiveByProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	return p, job, nil
}

// buildTimeline 构造渲染时间轴
// 轨道一：场景视频按场景号升序背靠背排列，全部静音
// 轨道二：配音从 0 开始铺满全程（auto 长度）
// 轨道三（可选）：背景音乐低音量铺底
func (s *Service) buildTimeline(p *model.Project, scenes []*model.Scene) *shotstack.Edit {
	clips := make([]shotstack.Clip, 0, len(scenes))
	start := 0.0
	for _, sc := range scenes {
		clip := shotstack.VideoClip(sc.VideoURL, start, float64(sc.Duration))
		mute := 0.0
		clip.Asset.Volume = &mute
		clips = append(clips, clip)
		start += float64(sc.Duration)
	}

	tracks := []shotstack.Track{
		{Clips: clips},
		{Clips: []shotstack.Clip{shotstack.AudioClip(p.VoiceoverURL, 0, "auto", 1.0)}},
	}
	if p.BackgroundMusicURL != "" {
		tracks = append(tracks, shotstack.Track{
			Clips: []shotstack.Clip{shotstack.AudioClip(p.BackgroundMusicURL, 0, "auto", 0.2)},
		})
	}

	return &shotstack.Edit{
		Timeline: shotstack.Timeline{
			Background: "#000000",
			Tracks:     tracks,
		},
		Output: shotstack.Output{
			Format:      "mp4",
			Resolution:  s.resolution,
			AspectRatio: "9:16",
		},
	}
}
