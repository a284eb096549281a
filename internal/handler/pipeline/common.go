package pipeline

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	pipelineModel "reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/apperr"
	"reelforge/internal/pkg/costs"
	httputil "reelforge/internal/pkg/http"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// respondError 根据错误类型写入对应的HTTP状态码和业务错误码
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := 50001

	switch {
	case apperr.IsValidation(err):
		status = http.StatusBadRequest
		code = 40001
	case apperr.IsNotFound(err):
		status = http.StatusNotFound
		code = 40401
	case errors.Is(err, apperr.ErrRenderAlreadyInProgress):
		status = http.StatusConflict
		code = 40901
	case apperr.IsPrecondition(err):
		status = http.StatusPreconditionFailed
		code = 41201
	case apperr.IsUpstream(err):
		status = http.StatusBadGateway
		code = 50201
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

// CharacterInfo 角色快照信息（用于响应）
type CharacterInfo struct {
	CharacterID string `json:"character_id"` // 角色ID
	Name        string `json:"name"`         // 角色名称
	Gender      string `json:"gender"`       // 性别
	Age         int    `json:"age"`          // 年龄
	VoiceID     string `json:"voice_id"`     // TTS音色ID
}

// ProjectInfo 项目信息（用于响应）
type ProjectInfo struct {
	ID                    string         `json:"id"`                                // 项目ID
	Topic                 string         `json:"topic"`                             // 视频主题
	TopicID               string         `json:"topic_id,omitempty"`                // 来源选题ID
	Script                string         `json:"script,omitempty"`                  // 解说脚本
	SceneCount            int            `json:"scene_count"`                       // 场景数量
	Categories            []string       `json:"categories,omitempty"`              // 分类标签
	Character             *CharacterInfo `json:"character,omitempty"`               // 解说角色快照
	VoiceoverID           string         `json:"voiceover_id,omitempty"`            // 配音资产ID
	VoiceoverURL          string         `json:"voiceover_url,omitempty"`           // 配音URL
	BackgroundMusicID     string         `json:"background_music_id,omitempty"`     // 背景音乐资产ID
	BackgroundMusicURL    string         `json:"background_music_url,omitempty"`    // 背景音乐URL
	BackgroundMusicPrompt string         `json:"background_music_prompt,omitempty"` // 背景音乐提示词
	Status                string         `json:"status"`                            // 项目状态
	CurrentStep           int            `json:"current_step"`                      // 当前步骤（1-5）
	Error                 string         `json:"error,omitempty"`                   // 失败原因
	Costs                 costs.Costs    `json:"costs"`                             // 成本明细
	RenderID              string         `json:"render_id,omitempty"`               // 渲染任务ID
	FinalVideoURL         string         `json:"final_video_url,omitempty"`         // 成片URL
	Version               int64          `json:"version"`                           // 版本号
	CreatedAt             string         `json:"created_at"`                        // 创建时间
	UpdatedAt             string         `json:"updated_at"`                        // 更新时间
}

// toProjectInfo 将Project实体转换为ProjectInfo
func toProjectInfo(p *pipelineModel.Project) ProjectInfo {
	info := ProjectInfo{
		ID:                    p.ID,
		Topic:                 p.Topic,
		TopicID:               p.TopicID,
		Script:                p.Script,
		SceneCount:            p.SceneCount,
		Categories:            p.Categories,
		VoiceoverID:           p.VoiceoverID,
		VoiceoverURL:          p.VoiceoverURL,
		BackgroundMusicID:     p.BackgroundMusicID,
		BackgroundMusicURL:    p.BackgroundMusicURL,
		BackgroundMusicPrompt: p.BackgroundMusicPrompt,
		Status:                string(p.Status),
		CurrentStep:           p.CurrentStep,
		Error:                 p.Error,
		Costs:                 p.Costs,
		RenderID:              p.RenderID,
		FinalVideoURL:         p.FinalVideoURL,
		Version:               p.Version,
		CreatedAt:             p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Character != nil {
		info.Character = &CharacterInfo{
			CharacterID: p.Character.CharacterID,
			Name:        p.Character.Name,
			Gender:      p.Character.Gender,
			Age:         p.Character.Age,
			VoiceID:     p.Character.VoiceID,
		}
	}
	return info
}

// toProjectInfoList 将Project列表转换为ProjectInfo列表
func toProjectInfoList(projects []*pipelineModel.Project) []ProjectInfo {
	result := make([]ProjectInfo, len(projects))
	for i, p := range projects {
		result[i] = toProjectInfo(p)
	}
	return result
}

// SceneInfo 场景信息（用于响应）
type SceneInfo struct {
	ProjectID         string `json:"project_id"`                    // 所属项目ID
	ID                int    `json:"id"`                            // 场景序号（1起）
	Duration          int    `json:"duration"`                      // 时长（秒）
	Voiceover         string `json:"voiceover,omitempty"`           // 解说词
	ImagePrompt       string `json:"image_prompt,omitempty"`        // 图片提示词
	MotionPrompt      string `json:"motion_prompt,omitempty"`       // 运动提示词
	LocationID        string `json:"location_id,omitempty"`         // 地点ID
	ActionID          string `json:"action_id,omitempty"`           // 动作ID
	CameraMovementID  string `json:"camera_movement_id,omitempty"`  // 运镜ID
	CharacterMotionID string `json:"character_motion_id,omitempty"` // 角色运动ID
	ImageURL          string `json:"image_url,omitempty"`           // 场景图片URL
	VideoURL          string `json:"video_url,omitempty"`           // 场景视频URL
	Approved          bool   `json:"approved"`                      // 图片是否已审核通过
	CreatedAt         string `json:"created_at"`                    // 创建时间
	UpdatedAt         string `json:"updated_at"`                    // 更新时间
}

// toSceneInfo 将Scene实体转换为SceneInfo
func toSceneInfo(s *pipelineModel.Scene) SceneInfo {
	return SceneInfo{
		ProjectID:         s.ProjectID,
		ID:                s.ID,
		Duration:          s.Duration,
		Voiceover:         s.Voiceover,
		ImagePrompt:       s.ImagePrompt,
		MotionPrompt:      s.MotionPrompt,
		LocationID:        s.LocationID,
		ActionID:          s.ActionID,
		CameraMovementID:  s.CameraMovementID,
		CharacterMotionID: s.CharacterMotionID,
		ImageURL:          s.ImageURL,
		VideoURL:          s.VideoURL,
		Approved:          s.Approved,
		CreatedAt:         s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         s.UpdatedAt.Format(time.RFC3339),
	}
}

// toSceneInfoList 将Scene列表转换为SceneInfo列表
func toSceneInfoList(scenes []*pipelineModel.Scene) []SceneInfo {
	result := make([]SceneInfo, len(scenes))
	for i, s := range scenes {
		result[i] = toSceneInfo(s)
	}
	return result
}

// AudioAssetInfo 音频资产信息（用于响应）
type AudioAssetInfo struct {
	ID        string         `json:"id"`                 // 资产ID
	ProjectID string         `json:"project_id"`         // 所属项目ID
	Kind      string         `json:"kind"`               // 资产类型：voiceover, music
	URL       string         `json:"url"`                // 访问URL
	Cost      float64        `json:"cost"`               // 生成成本
	Metadata  map[string]any `json:"metadata,omitempty"` // 附加信息
	CreatedAt string         `json:"created_at"`         // 创建时间
}

// toAudioAssetInfo 将AudioAsset实体转换为AudioAssetInfo
func toAudioAssetInfo(a *pipelineModel.AudioAsset) AudioAssetInfo {
	return AudioAssetInfo{
		ID:        a.ID,
		ProjectID: a.ProjectID,
		Kind:      string(a.Kind),
		URL:       a.URL,
		Cost:      a.Cost,
		Metadata:  a.Metadata,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

// toAudioAssetInfoList 将AudioAsset列表转换为AudioAssetInfo列表
func toAudioAssetInfoList(assets []*pipelineModel.AudioAsset) []AudioAssetInfo {
	result := make([]AudioAssetInfo, len(assets))
	for i, a := range assets {
		result[i] = toAudioAssetInfo(a)
	}
	return result
}

// RenderJobInfo 渲染轮询任务信息（用于响应）
type RenderJobInfo struct {
	ID         string `json:"id"`                    // 任务ID
	ProjectID  string `json:"project_id"`            // 所属项目ID
	RenderID   string `json:"render_id"`             // 渲染服务侧任务ID
	Status     string `json:"status"`                // 任务状态：pending, done, failed
	Attempt    int    `json:"attempt"`               // 已轮询次数
	LastStatus string `json:"last_status,omitempty"` // 最近一次渲染服务状态
	Error      string `json:"error,omitempty"`       // 失败原因
	CreatedAt  string `json:"created_at"`            // 创建时间
	UpdatedAt  string `json:"updated_at"`            // 更新时间
}

// toRenderJobInfo 将RenderJob实体转换为RenderJobInfo
func toRenderJobInfo(j *pipelineModel.RenderJob) RenderJobInfo {
	return RenderJobInfo{
		ID:         j.ID,
		ProjectID:  j.ProjectID,
		RenderID:   j.RenderID,
		Status:     string(j.Status),
		Attempt:    j.Attempt,
		LastStatus: j.LastStatus,
		Error:      j.Error,
		CreatedAt:  j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  j.UpdatedAt.Format(time.RFC3339),
	}
}
