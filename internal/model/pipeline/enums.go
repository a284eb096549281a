package pipeline

// ProjectStatus 项目状态
// 流转：draft → script_generated → voiceover_generated →（图片/视频阶段为隐式进度）→ rendering → completed | failed
type ProjectStatus string

const (
	StatusDraft              ProjectStatus = "draft"               // 新建
	StatusScriptGenerated    ProjectStatus = "script_generated"    // 脚本已生成
	StatusVoiceoverGenerated ProjectStatus = "voiceover_generated" // 配音已生成
	StatusRendering          ProjectStatus = "rendering"           // 渲染中
	StatusCompleted          ProjectStatus = "completed"           // 完成
	StatusFailed             ProjectStatus = "failed"              // 失败
)

// IsTerminal 是否为终态
func (s ProjectStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// 流水线粗粒度进度（current_step，1..5）
const (
	StepScript    = 1 // 脚本
	StepVoiceover = 2 // 配音
	StepImages    = 3 // 场景图片
	StepVideos    = 4 // 场景视频
	StepAssembly  = 5 // 合成
)

// AudioAssetKind 音频资产类型
type AudioAssetKind string

const (
	AudioKindVoiceover AudioAssetKind = "voiceover" // 配音
	AudioKindMusic     AudioAssetKind = "music"     // 背景音乐
)

// RenderJobStatus 渲染轮询任务状态
type RenderJobStatus string

const (
	RenderJobPending RenderJobStatus = "pending" // 轮询中
	RenderJobDone    RenderJobStatus = "done"    // 渲染完成
	RenderJobFailed  RenderJobStatus = "failed"  // 渲染失败或超时
)
