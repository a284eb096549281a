package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	model "reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/apperr"
	"reelforge/internal/pkg/id"
	"reelforge/internal/pkg/storage"
)

// CreateProjectInput 创建项目入参
type CreateProjectInput struct {
	Topic       string
	TopicID     string
	SceneCount  int
	Categories  []string
	CharacterID string
	MusicPrompt string
}

// CreateProject 创建项目（draft 状态，current_step=1）
// 角色信息从角色库取快照存入项目，配音阶段仍会回源校验 voice_id
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (*model.Project, error) {
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		return nil, apperr.NewValidation("topic", "topic is required")
	}
	if in.SceneCount <= 0 {
		return nil, apperr.NewValidation("scene_count", "scene_count must be positive")
	}
	if in.CharacterID == "" {
		return nil, apperr.NewValidation("character_id", "character_id is required")
	}

	character, err := s.characters.FindByID(ctx, in.CharacterID)
	if err != nil {
		return nil, err
	}

	p := &model.Project{
		ID:         id.New(),
		Topic:      in.Topic,
		TopicID:    in.TopicID,
		SceneCount: in.SceneCount,
		Categories: in.Categories,
		Character: &model.SelectedCharacter{
			CharacterID: character.ID,
			Name:        character.Name,
			Gender:      character.Gender,
			Age:         character.Age,
			VoiceID:     character.VoiceID,
		},
		BackgroundMusicPrompt: in.MusicPrompt,
		SessionID:             id.New(),
		Status:                model.StatusDraft,
		CurrentStep:           model.StepScript,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	if err := s.characters.IncrementUsage(ctx, character.ID); err != nil {
		log.Warn().Err(err).Str("character_id", character.ID).Msg("累加角色使用次数失败")
	}

	log.Info().
		Str("project_id", p.ID).
		Str("topic", p.Topic).
		Int("scene_count", p.SceneCount).
		Msg("项目已创建")
	return p, nil
}

// GetProject 查询项目
func (s *Service) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	return s.projects.FindByID(ctx, projectID)
}

// ListProjects 分页查询项目
func (s *Service) ListProjects(ctx context.Context, status string, page, pageSize int64) ([]*model.Project, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return s.projects.List(ctx, status, page, pageSize)
}

// UpdateProjectInput 项目可编辑字段（仅浅合并提供的字段）
type UpdateProjectInput struct {
	Topic       *string
	Categories  []string
	MusicPrompt *string
}

// UpdateProject 浅合并更新项目元数据
func (s *Service) UpdateProject(ctx context.Context, projectID string, in UpdateProjectInput) (*model.Project, error) {
	fields := bson.M{}
	if in.Topic != nil {
		topic := strings.TrimSpace(*in.Topic)
		if topic == "" {
			return nil, apperr.NewValidation("topic", "topic cannot be empty")
		}
		fields["topic"] = topic
	}
	if in.Categories != nil {
		fields["categories"] = in.Categories
	}
	if in.MusicPrompt != nil {
		fields["background_music_prompt"] = *in.MusicPrompt
	}
	if len(fields) == 0 {
		return nil, apperr.NewValidation("body", "no updatable fields provided")
	}

	if err := s.projects.UpdateFields(ctx, projectID, fields); err != nil {
		return nil, err
	}
	return s.projects.FindByID(ctx, projectID)
}

// DeleteProject 删除项目及其场景、音频资产与存储对象
func (s *Service) DeleteProject(ctx context.Context, projectID string) error {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}

	// 先清理存储对象，单个对象失败只记日志，不阻塞删除
	scenes, err := s.scenes.FindByProject(ctx, projectID)
	if err != nil {
		return err
	}
	for _, sc := range scenes {
		s.deleteStoredAsset(ctx, sc.ImageURL)
		s.deleteStoredAsset(ctx, sc.VideoURL)
	}

	assets, err := s.audioAssets.FindByProject(ctx, projectID, "")
	if err != nil {
		return err
	}
	for _, a := range assets {
		s.deleteStoredAsset(ctx, a.URL)
	}

	if err := s.scenes.DeleteByProject(ctx, projectID); err != nil {
		return fmt.Errorf("delete scenes: %w", err)
	}
	if err := s.audioAssets.DeleteByProject(ctx, projectID); err != nil {
		return fmt.Errorf("delete audio assets: %w", err)
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}

	log.Info().Str("project_id", p.ID).Msg("项目已删除")
	return nil
}

// deleteStoredAsset 删除存储对象，网关不识别的外部地址跳过
func (s *Service) deleteStoredAsset(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := storage.DeleteByURL(ctx, s.store, url); err != nil {
		if apperr.IsUnsupportedURLFormat(err) {
			return
		}
		log.Warn().Err(err).Str("url", url).Msg("删除存储对象失败")
	}
}
