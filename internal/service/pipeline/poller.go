package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	model "reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/shotstack"
	pipelineRepo "reelforge/internal/repository/pipeline"
)

// Poller 渲染完成轮询器
// 合成阶段提交渲染后由它在后台以固定节奏查询状态，直至终态或次数耗尽
// 轮询进度持久化在 render_jobs 文档中，进程重启后 Recover 可接管未完成的任务
type Poller struct {
	projects    pipelineRepo.ProjectRepository
	jobs        pipelineRepo.RenderJobRepository
	renderer    RenderClient
	interval    time.Duration
	maxAttempts int
}

// NewPoller 创建轮询器
func NewPoller(projects pipelineRepo.ProjectRepository, jobs pipelineRepo.RenderJobRepository, renderer RenderClient, interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	return &Poller{
		projects:    projects,
		jobs:        jobs,
		renderer:    renderer,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// Start 后台启动一个渲染任务的轮询循环
// 与触发它的 HTTP 请求解耦，使用独立的 context
func (p *Poller) Start(job *model.RenderJob) {
	go p.Run(context.Background(), job)
}

// Run 轮询单个渲染任务直至终态
// 状态查询失败视为流水线级失败，不重试提交
func (p *Poller) Run(ctx context.Context, job *model.RenderJob) {
	logger := log.With().
		Str("project_id", job.ProjectID).
		Str("render_id", job.RenderID).
		Logger()
	logger.Info().Int("attempt", job.Attempt).Msg("开始轮询渲染状态")

	for attempt := job.Attempt + 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			logger.Warn().Msg("轮询被取消")
			return
		case <-time.After(p.interval):
		}

		status, err := p.renderer.GetRenderStatus(ctx, job.RenderID)
		if err != nil {
			logger.Error().Err(err).Int("attempt", attempt).Msg("渲染状态查询失败")
			p.finish(ctx, job, model.RenderJobFailed, fmt.Sprintf("render status check failed: %v", err))
			return
		}

		switch status.State {
		case shotstack.StateDone:
			p.complete(ctx, job, status.URL)
			return
		case shotstack.StateFailed:
			reason := status.Error
			if reason == "" {
				reason = "render failed"
			}
			p.finish(ctx, job, model.RenderJobFailed, reason)
			return
		}

		if err := p.jobs.RecordAttempt(ctx, job.ID, attempt, string(status.State), time.Now().Add(p.interval)); err != nil {
			logger.Error().Err(err).Msg("记录轮询进度失败")
		}
		logger.Debug().Int("attempt", attempt).Str("state", string(status.State)).Msg("渲染进行中")
	}

	p.finish(ctx, job, model.RenderJobFailed, fmt.Sprintf("render polling timeout after %d attempts", p.maxAttempts))
}

// Recover 进程启动时扫描未完成的渲染任务并恢复轮询
func (p *Poller) Recover(ctx context.Context) error {
	jobs, err := p.jobs.FindPending(ctx)
	if err != nil {
		return fmt.Errorf("scan pending render jobs: %w", err)
	}
	for _, job := range jobs {
		log.Info().
			Str("project_id", job.ProjectID).
			Str("render_id", job.RenderID).
			Int("attempt", job.Attempt).
			Msg("恢复未完成的渲染轮询")
		p.Start(job)
	}
	return nil
}

// complete 渲染成功：写入成片地址并将项目置为 completed
func (p *Poller) complete(ctx context.Context, job *model.RenderJob, url string) {
	fields := bson.M{
		"status":          model.StatusCompleted,
		"final_video_url": url,
		"error":           "",
	}
	if err := p.projects.UpdateFields(ctx, job.ProjectID, fields); err != nil {
		log.Error().Err(err).Str("project_id", job.ProjectID).Msg("写入渲染完成状态失败")
	}
	if err := p.jobs.Finish(ctx, job.ID, model.RenderJobDone, ""); err != nil {
		log.Error().Err(err).Str("render_id", job.RenderID).Msg("关闭渲染任务失败")
	}
	log.Info().
		Str("project_id", job.ProjectID).
		Str("final_video_url", url).
		Msg("渲染完成")
}

// finish 渲染失败或超时：项目置 failed 并记录原因
func (p *Poller) finish(ctx context.Context, job *model.RenderJob, status model.RenderJobStatus, reason string) {
	fields := bson.M{
		"status": model.StatusFailed,
		"error":  reason,
	}
	if err := p.projects.UpdateFields(ctx, job.ProjectID, fields); err != nil {
		log.Error().Err(err).Str("project_id", job.ProjectID).Msg("写入渲染失败状态失败")
	}
	if err := p.jobs.Finish(ctx, job.ID, status, reason); err != nil {
		log.Error().Err(err).Str("render_id", job.RenderID).Msg("关闭渲染任务失败")
	}
	log.Warn().
		Str("project_id", job.ProjectID).
		Str("reason", reason).
		Msg("渲染未完成")
}
