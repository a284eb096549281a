package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"reelforge/internal/model/library"
	model "reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/apperr"
)

// GetScenes 查询项目的全部场景（按场景号升序）
func (s *Service) GetScenes(ctx context.Context, projectID string) ([]*model.Scene, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.scenes.FindByProject(ctx, projectID)
}

// UpdateSceneInput 场景可编辑字段（仅浅合并提供的字段）
type UpdateSceneInput struct {
	Duration          *int
	Voiceover         *string
	ImagePrompt       *string
	MotionPrompt      *string
	LocationID        *string
	ActionID          *string
	CameraMovementID  *string
	CharacterMotionID *string
}

// UpdateScene 浅合并更新场景元数据，时长在仓库层收敛到 [1,15]
func (s *Service) UpdateScene(ctx context.Context, projectID string, sceneID int, in UpdateSceneInput) (*model.Scene, error) {
	fields := bson.M{}
	if in.Duration != nil {
		fields["duration"] = *in.Duration
	}
	if in.Voiceover != nil {
		fields["voiceover"] = *in.Voiceover
	}
	if in.ImagePrompt != nil {
		fields["image_prompt"] = *in.ImagePrompt
	}
	if in.MotionPrompt != nil {
		fields["motion_prompt"] = *in.MotionPrompt
	}
	if in.LocationID != nil {
		fields["location_id"] = *in.LocationID
	}
	if in.ActionID != nil {
		fields["action_id"] = *in.ActionID
	}
	if in.CameraMovementID != nil {
		fields["camera_movement_id"] = *in.CameraMovementID
	}
	if in.CharacterMotionID != nil {
		fields["character_motion_id"] = *in.CharacterMotionID
	}
	if len(fields) == 0 {
		return nil, apperr.NewValidation("body", "no updatable fields provided")
	}

	if err := s.scenes.UpdateFields(ctx, projectID, sceneID, fields); err != nil {
		return nil, err
	}
	return s.scenes.FindOne(ctx, projectID, sceneID)
}

// ApproveScene 设置场景审批标记
// 视频与合成阶段要求所有场景均已通过
func (s *Service) ApproveScene(ctx context.Context, projectID string, sceneID int, approved bool) (*model.Scene, error) {
	if err := s.scenes.SetApproved(ctx, projectID, sceneID, approved); err != nil {
		return nil, err
	}
	log.Info().
		Str("project_id", projectID).
		Int("scene_id", sceneID).
		Bool("approved", approved).
		Msg("场景审批状态更新")
	return s.scenes.FindOne(ctx, projectID, sceneID)
}

// sceneMotionRefs 解析场景引用的镜头运动与人物动态，引用缺失时为 nil
func (s *Service) sceneMotionRefs(ctx context.Context, sc *model.Scene) (*library.CameraMovement, *library.CharacterMotion) {
	var camera *library.CameraMovement
	var motion *library.CharacterMotion
	if sc.CameraMovementID != "" {
		if c, err := s.cameras.FindByID(ctx, sc.CameraMovementID); err == nil {
			camera = c
		}
	}
	if sc.CharacterMotionID != "" {
		if m, err := s.motions.FindByID(ctx, sc.CharacterMotionID); err == nil {
			motion = m
		}
	}
	return camera, motion
}
