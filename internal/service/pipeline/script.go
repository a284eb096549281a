package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"reelforge/internal/ai"
	"reelforge/internal/model/library"
	model "reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/apperr"
	"reelforge/internal/pkg/costs"
	"reelforge/internal/pkg/pricing"
	"reelforge/internal/pkg/scripttools"
	libraryService "reelforge/internal/service/library"
)

// generatedScene LLM 返回的单场景结构
type generatedScene struct {
	Voiceover    string `json:"voiceover"`
	ImagePrompt  string `json:"image_prompt"`
	MotionPrompt string `json:"motion_prompt"`
}

// GenerateScript 阶段一：生成脚本并切分场景
// 前置条件：topic 与角色已选定
// 成功后落库脚本与场景、status=script_generated、current_step=2，
// 并尽力将来源选题标记为已生成（失败不影响本阶段）
func (s *Service) GenerateScript(ctx context.Context, projectID string) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Topic) == "" {
		return nil, apperr.NewValidation("topic", "project has no topic")
	}
	if p.Character == nil {
		return nil, apperr.NewValidation("character", "project has no selected character")
	}

	// 若之前未选址，则此时做多样性选址并按连续块分配到场景
	sceneLocations, err := s.pickLocations(ctx, p)
	if err != nil {
		return nil, err
	}

	prompt := scripttools.NewScriptPromptBuilder().Build(scripttools.ScriptPromptInput{
		Topic:          p.Topic,
		SceneCount:     p.SceneCount,
		Categories:     p.Categories,
		CharacterName:  p.Character.Name,
		Gender:         p.Character.Gender,
		Age:            p.Character.Age,
		SceneLocations: sceneLocations,
	})

	resp, err := s.writer.Generate(ctx, &ai.GenerateRequest{
		SystemPrompt: "You write tightly paced narration scripts for vertical short-form video.",
		UserPrompt:   prompt,
	})
	if err != nil {
		s.failProject(ctx, projectID, fmt.Errorf("script generation failed: %w", err))
		return nil, err
	}

	var generated []generatedScene
	if err := scripttools.NewJSONExtractor().ExtractInto(resp.Content, &generated); err != nil {
		err = apperr.WrapUpstream("llm", fmt.Errorf("no JSON payload in response: %w", err))
		s.failProject(ctx, projectID, err)
		return nil, err
	}
	if len(generated) == 0 {
		err = apperr.WrapUpstream("llm", fmt.Errorf("response contains no scenes"))
		s.failProject(ctx, projectID, err)
		return nil, err
	}

	voiceovers := make([]string, 0, len(generated))
	for _, g := range generated {
		voiceovers = append(voiceovers, g.Voiceover)
	}
	script := strings.Join(voiceovers, "\n\n")

	// 长度门禁：过短直接失败且不落库，过长只告警
	if err := scripttools.CheckScriptLength(script, p.SceneCount); err != nil {
		return nil, err
	}

	// 场景时长按语速估算
	scenes := make([]*model.Scene, 0, len(generated))
	for i, g := range generated {
		sc := &model.Scene{
			ID:           i + 1,
			Duration:     s.pacing.EstimateSceneDuration(g.Voiceover),
			Voiceover:    g.Voiceover,
			ImagePrompt:  g.ImagePrompt,
			MotionPrompt: g.MotionPrompt,
		}
		if loc := sceneLocations[sc.ID]; loc != nil {
			sc.LocationID = loc.ID
		}
		scenes = append(scenes, sc)
	}

	if err := s.scenes.ReplaceAll(ctx, projectID, scenes); err != nil {
		return nil, fmt.Errorf("persist scenes: %w", err)
	}

	fields := bson.M{
		"script":       script,
		"status":       model.StatusScriptGenerated,
		"current_step": model.StepVoiceover,
		"error":        "",
	}
	if err := s.projects.UpdateFields(ctx, projectID, fields); err != nil {
		return nil, err
	}

	// 成本：LLM 按百万 token 计价
	inputRate := s.pricer.UnitPrice(ctx, pricing.ItemClaudeInputPerMillion)
	outputRate := s.pricer.UnitPrice(ctx, pricing.ItemClaudeOutputPerMillion)
	cost := costs.TokenCost(resp.PromptTokens, inputRate) + costs.TokenCost(resp.OutputTokens, outputRate)
	s.addCost(ctx, projectID, costs.ProviderClaude, costs.StageScript, cost)

	// 尽力而为：选题标记与地点使用计数失败不影响阶段结果
	if p.TopicID != "" {
		if err := s.topics.MarkGenerated(ctx, p.TopicID); err != nil {
			log.Warn().Err(err).Str("topic_id", p.TopicID).Msg("标记选题已生成失败")
		}
	}
	s.bumpLocationUsage(ctx, sceneLocations)

	log.Info().
		Str("project_id", projectID).
		Int("scenes", len(scenes)).
		Int("prompt_tokens", resp.PromptTokens).
		Int("output_tokens", resp.OutputTokens).
		Msg("脚本生成完成")

	return s.projects.FindByID(ctx, projectID)
}

// pickLocations 为项目解析或生成场景选址
// 已有旧版映射或场景级选址时沿用，否则按多样性算法挑选并分配
func (s *Service) pickLocations(ctx context.Context, p *model.Project) (map[int]*library.Location, error) {
	// 旧版映射优先保留读取兼容
	if len(p.LocationMapping) > 0 {
		mapping := make(map[int]*library.Location, len(p.LocationMapping))
		for key, locID := range p.LocationMapping {
			var sceneID int
			if _, err := fmt.Sscanf(key, "%d", &sceneID); err != nil || sceneID <= 0 {
				continue
			}
			loc, err := s.locations.FindByID(ctx, locID)
			if err != nil {
				if apperr.IsNotFound(err) {
					log.Warn().Str("location_id", locID).Msg("旧版映射指向不存在的地点，跳过")
					continue
				}
				return nil, err
			}
			mapping[sceneID] = loc
		}
		return mapping, nil
	}

	catalog, err := s.locations.List(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, nil
	}

	// 地点数取场景数的一半（向上取整），保证每个地点至少覆盖两个场景
	count := (p.SceneCount + 1) / 2
	if count < 1 {
		count = 1
	}
	selected := s.picker.SelectDiverse(catalog, count)
	return libraryService.AssignScenes(p.SceneCount, selected), nil
}

// bumpLocationUsage 对被选中的地点累加使用次数
func (s *Service) bumpLocationUsage(ctx context.Context, sceneLocations map[int]*library.Location) {
	seen := make(map[string]bool)
	var ids []string
	for _, loc := range sceneLocations {
		if loc != nil && !seen[loc.ID] {
			seen[loc.ID] = true
			ids = append(ids, loc.ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := s.locations.IncrementUsage(ctx, ids); err != nil {
		log.Warn().Err(err).Strs("location_ids", ids).Msg("累加地点使用次数失败")
	}
}
