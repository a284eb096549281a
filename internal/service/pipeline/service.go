package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"reelforge/internal/ai"
	"reelforge/internal/config"
	"reelforge/internal/model/library"
	model "reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/costs"
	"reelforge/internal/pkg/elevenlabs"
	"reelforge/internal/pkg/scripttools"
	"reelforge/internal/pkg/shotstack"
	"reelforge/internal/pkg/storage"
	libraryRepo "reelforge/internal/repository/library"
	pipelineRepo "reelforge/internal/repository/pipeline"
	libraryService "reelforge/internal/service/library"
)

// ScriptModel 脚本生成模型端口
type ScriptModel interface {
	Generate(ctx context.Context, req *ai.GenerateRequest) (*ai.GenerateResponse, error)
}

// SpeechClient 语音合成端口
type SpeechClient interface {
	Synthesize(ctx context.Context, voiceID, text string) (*elevenlabs.SynthesizeResult, error)
	ComposeMusic(ctx context.Context, prompt string, lengthMs int) ([]byte, error)
}

// VisualClient 图片与图生视频端口
type VisualClient interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
	ImageToVideo(ctx context.Context, imageURL, motionPrompt string, durationSec int) (string, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// RenderClient 视频合成渲染端口
type RenderClient interface {
	SubmitRender(ctx context.Context, edit *shotstack.Edit) (string, error)
	GetRenderStatus(ctx context.Context, renderID string) (*shotstack.RenderStatus, error)
}

// Pricer 单价查询端口
type Pricer interface {
	UnitPrice(ctx context.Context, item string) float64
}

// Service 流水线编排服务
// 五个阶段均由 HTTP 请求触发，阶段间状态通过 Project 文档流转
type Service struct {
	projects    pipelineRepo.ProjectRepository
	scenes      pipelineRepo.SceneRepository
	audioAssets pipelineRepo.AudioAssetRepository
	renderJobs  pipelineRepo.RenderJobRepository

	locations  libraryRepo.LocationRepository
	characters libraryRepo.CharacterRepository
	topics     libraryRepo.TopicRepository
	actions    *libraryRepo.ActionRepo
	cameras    *libraryRepo.CameraMovementRepo
	motions    *libraryRepo.CharacterMotionRepo

	writer   ScriptModel
	speech   SpeechClient
	visual   VisualClient
	renderer RenderClient
	pricer   Pricer
	store    storage.Storage

	picker *libraryService.LocationPicker
	pacing *scripttools.PacingEstimator
	poller *Poller

	resolution  string
	concurrency int
}

// Deps 服务依赖集合
type Deps struct {
	Projects    pipelineRepo.ProjectRepository
	Scenes      pipelineRepo.SceneRepository
	AudioAssets pipelineRepo.AudioAssetRepository
	RenderJobs  pipelineRepo.RenderJobRepository

	Locations  libraryRepo.LocationRepository
	Characters libraryRepo.CharacterRepository
	Topics     libraryRepo.TopicRepository
	Actions    *libraryRepo.ActionRepo
	Cameras    *libraryRepo.CameraMovementRepo
	Motions    *libraryRepo.CharacterMotionRepo

	Writer   ScriptModel
	Speech   SpeechClient
	Visual   VisualClient
	Renderer RenderClient
	Pricer   Pricer
	Store    storage.Storage

	Rand *rand.Rand // 选址随机源，nil 时使用默认
}

// NewService 创建流水线编排服务
func NewService(deps Deps, cfg *config.PipelineConfig, resolution string) *Service {
	concurrency := cfg.SceneConcurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	s := &Service{
		projects:    deps.Projects,
		scenes:      deps.Scenes,
		audioAssets: deps.AudioAssets,
		renderJobs:  deps.RenderJobs,
		locations:   deps.Locations,
		characters:  deps.Characters,
		topics:      deps.Topics,
		actions:     deps.Actions,
		cameras:     deps.Cameras,
		motions:     deps.Motions,
		writer:      deps.Writer,
		speech:      deps.Speech,
		visual:      deps.Visual,
		renderer:    deps.Renderer,
		pricer:      deps.Pricer,
		store:       deps.Store,
		picker:      libraryService.NewLocationPicker(deps.Rand),
		pacing:      scripttools.NewPacingEstimator(),
		resolution:  resolution,
		concurrency: concurrency,
	}
	s.poller = NewPoller(deps.Projects, deps.RenderJobs, deps.Renderer, cfg.PollInterval, cfg.PollMaxAttempts)
	return s
}

// Poller 暴露渲染轮询器（供启动时的恢复扫描使用）
func (s *Service) Poller() *Poller {
	return s.poller
}

// addCost 原子累加成本账本（$inc 落库，并发阶段调用不丢账）
// 外部调用成功与记账之间进程崩溃会导致成本少记，属已接受的缺口
func (s *Service) addCost(ctx context.Context, projectID string, provider costs.Provider, stage costs.Stage, delta float64) {
	deltas := costs.IncPaths(provider, stage, delta)
	if len(deltas) == 0 {
		return
	}
	if err := s.projects.AccrueCost(ctx, projectID, deltas); err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("成本记账写入失败")
	}
}

// failProject 将阶段失败原因落库，供操作端查看
func (s *Service) failProject(ctx context.Context, projectID string, cause error) {
	fields := bson.M{
		"status": model.StatusFailed,
		"error":  cause.Error(),
	}
	if err := s.projects.UpdateFields(ctx, projectID, fields); err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("写入失败状态失败")
	}
}

// resolveSceneLocation 解析场景地点
// 优先使用场景自身的 location_id，缺失时回退到项目上按场景号键控的旧映射
func (s *Service) resolveSceneLocation(ctx context.Context, p *model.Project, sc *model.Scene) (*library.Location, error) {
	locationID := sc.LocationID
	if locationID == "" && p.LocationMapping != nil {
		locationID = p.LocationMapping[fmt.Sprintf("%d", sc.ID)]
	}
	if locationID == "" {
		return nil, nil
	}
	return s.locations.FindByID(ctx, locationID)
}

// newAssetPath 生成存储对象路径
func newAssetPath(projectID, category, filename string) string {
	return fmt.Sprintf("projects/%s/%s/%d_%s", projectID, category, time.Now().UnixNano(), filename)
}
