package scripttools

import (
	"fmt"
	"sort"
	"strings"

	"reelforge/internal/model/library"
)

// ScriptPromptInput 脚本生成提示词的输入
type ScriptPromptInput struct {
	Topic         string
	SceneCount    int
	Categories    []string
	CharacterName string
	Gender        string
	Age           int
	// 场景序号（1 起）到地点的映射，用于地点连续性引导，可为空
	SceneLocations map[int]*library.Location
}

// ScriptPromptBuilder 脚本提示词构建器
type ScriptPromptBuilder struct{}

// NewScriptPromptBuilder 创建脚本提示词构建器
func NewScriptPromptBuilder() *ScriptPromptBuilder {
	return &ScriptPromptBuilder{}
}

// Build 构建脚本生成提示词
// 输出要求 LLM 返回 JSON 数组，每个元素对应一个场景
func (b *ScriptPromptBuilder) Build(in ScriptPromptInput) string {
	minChars, maxChars := ScriptBounds(in.SceneCount)

	var sb strings.Builder
	sb.WriteString("You are a short-form video scriptwriter.\n")
	fmt.Fprintf(&sb, "Write a narration script about %q told by %s",
		in.Topic, in.CharacterName)
	if in.Gender != "" && in.Age > 0 {
		fmt.Fprintf(&sb, " (%s, %d years old)", in.Gender, in.Age)
	}
	sb.WriteString(".\n")
	if len(in.Categories) > 0 {
		fmt.Fprintf(&sb, "Topic categories: %s.\n", strings.Join(in.Categories, ", "))
	}
	fmt.Fprintf(&sb, "Split the script into exactly %d scenes.\n", in.SceneCount)
	fmt.Fprintf(&sb, "Total narration length must be between %d and %d characters "+
		"(each scene fills about 8 seconds of speech at ~12 characters per second).\n",
		minChars, maxChars)
	sb.WriteString("You may insert [pause] or [pause:2s] tokens where a dramatic silence helps.\n")

	if block := b.locationContext(in.SceneLocations); block != "" {
		sb.WriteString("\n")
		sb.WriteString(block)
	}

	sb.WriteString("\nRespond with ONLY a JSON array, one object per scene:\n")
	sb.WriteString(`[{"voiceover": "...", "image_prompt": "...", "motion_prompt": "..."}]`)
	sb.WriteString("\n")

	return sb.String()
}

// locationContext 根据预选地点构建连续性引导段
// 相邻的同地点场景合并为一组，提示 LLM 保持组内叙事连贯
func (b *ScriptPromptBuilder) locationContext(sceneLocations map[int]*library.Location) string {
	if len(sceneLocations) == 0 {
		return ""
	}

	indexes := make([]int, 0, len(sceneLocations))
	for idx := range sceneLocations {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	var sb strings.Builder
	sb.WriteString("Scene locations (keep narration continuous within each location group):\n")

	groupStart := indexes[0]
	prev := indexes[0]
	current := sceneLocations[indexes[0]]
	flush := func(from, to int, loc *library.Location) {
		if loc == nil {
			return
		}
		if from == to {
			fmt.Fprintf(&sb, "- Scene %d: %s: %s\n", from, loc.Name, loc.Description)
		} else {
			fmt.Fprintf(&sb, "- Scenes %d-%d: %s: %s\n", from, to, loc.Name, loc.Description)
		}
	}

	for _, idx := range indexes[1:] {
		loc := sceneLocations[idx]
		sameGroup := idx == prev+1 && loc != nil && current != nil && loc.ID == current.ID
		if !sameGroup {
			flush(groupStart, prev, current)
			groupStart = idx
			current = loc
		}
		prev = idx
	}
	flush(groupStart, prev, current)

	return sb.String()
}

// ImagePromptInput 场景图片提示词的输入
type ImagePromptInput struct {
	Voiceover    string
	ImagePrompt  string
	Location     *library.Location
	SameLocation bool // 与上一场景地点相同
	FirstScene   bool // 首个场景没有连续性指令
	Action       *library.Action
}

// ImagePromptBuilder 场景图片提示词构建器
type ImagePromptBuilder struct{}

// NewImagePromptBuilder 创建场景图片提示词构建器
func NewImagePromptBuilder() *ImagePromptBuilder {
	return &ImagePromptBuilder{}
}

// Build 构建场景图片提示词
// 组合：场景画面描述、配音语境、地点描述、与上一场景的连续性指令、动作引导
func (b *ImagePromptBuilder) Build(in ImagePromptInput) string {
	var parts []string

	if in.ImagePrompt != "" {
		parts = append(parts, in.ImagePrompt)
	}
	if in.Voiceover != "" {
		parts = append(parts, fmt.Sprintf("The narration for this moment: %q", StripPauses(in.Voiceover)))
	}
	if in.Location != nil {
		desc := in.Location.Description
		if vc := in.Location.VisualCharacteristics; vc != nil {
			extras := []string{}
			if vc.Lighting != "" {
				extras = append(extras, "lighting: "+vc.Lighting)
			}
			if vc.ColorPalette != "" {
				extras = append(extras, "colors: "+vc.ColorPalette)
			}
			if vc.Atmosphere != "" {
				extras = append(extras, "atmosphere: "+vc.Atmosphere)
			}
			if len(extras) > 0 {
				desc = desc + " (" + strings.Join(extras, "; ") + ")"
			}
		}
		parts = append(parts, fmt.Sprintf("Location: %s: %s", in.Location.Name, desc))
	}
	if !in.FirstScene {
		if in.SameLocation {
			parts = append(parts, "SAME location and lighting as the previous scene, keep visual continuity")
		} else {
			parts = append(parts, "NEW location, establish a clearly different setting from the previous scene")
		}
	}
	if in.Action != nil {
		parts = append(parts, fmt.Sprintf("Pose/action: %s", in.Action.Description))
	}

	return strings.Join(parts, ". ")
}

// BuildMotionPrompt 构建图生视频的运动提示词
// 组合场景自身的 motion_prompt、镜头运动与人物动态引导
func BuildMotionPrompt(motionPrompt string, camera *library.CameraMovement, motion *library.CharacterMotion) string {
	var parts []string
	if motionPrompt != "" {
		parts = append(parts, motionPrompt)
	}
	if camera != nil {
		parts = append(parts, fmt.Sprintf("Camera: %s", camera.Description))
	}
	if motion != nil {
		parts = append(parts, fmt.Sprintf("Subject motion: %s", motion.Description))
	}
	if len(parts) == 0 {
		return "subtle natural motion, smooth cinematic movement"
	}
	return strings.Join(parts, ". ")
}
