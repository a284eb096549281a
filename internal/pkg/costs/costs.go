package costs

// 成本账本：纯函数，不做去重，调用方负责防止重复记账。
// 所有金额单位为美元。

// Provider 计费提供方标识
type Provider string

const (
	ProviderClaude     Provider = "claude"
	ProviderElevenLabs Provider = "elevenlabs"
	ProviderShotstack  Provider = "shotstack"
	ProviderFalImages  Provider = "fal_images"
	ProviderFalVideos  Provider = "fal_videos"
)

// Stage 流水线阶段标识（step1..step5）
type Stage string

const (
	StageScript    Stage = "step1"
	StageVoiceover Stage = "step2"
	StageImages    Stage = "step3"
	StageVideos    Stage = "step4"
	StageAssembly  Stage = "step5"
)

// StageCosts 单阶段成本明细
type StageCosts struct {
	Claude     float64 `bson:"claude,omitempty" json:"claude,omitempty"`
	ElevenLabs float64 `bson:"elevenlabs,omitempty" json:"elevenlabs,omitempty"`
	Shotstack  float64 `bson:"shotstack,omitempty" json:"shotstack,omitempty"`
	FalImages  float64 `bson:"fal_images,omitempty" json:"fal_images,omitempty"`
	FalVideos  float64 `bson:"fal_videos,omitempty" json:"fal_videos,omitempty"`
	Total      float64 `bson:"total" json:"total"`
}

// Costs 项目累计成本，按提供方与阶段双维度聚合
// 不变式：Total 恒等于所有 Add 调用 delta 之和；阶段小计只增不减
type Costs struct {
	Claude     float64    `bson:"claude" json:"claude"`
	ElevenLabs float64    `bson:"elevenlabs" json:"elevenlabs"`
	Shotstack  float64    `bson:"shotstack" json:"shotstack"`
	FalImages  float64    `bson:"fal_images" json:"fal_images"`
	FalVideos  float64    `bson:"fal_videos" json:"fal_videos"`
	Step1      StageCosts `bson:"step1" json:"step1"`
	Step2      StageCosts `bson:"step2" json:"step2"`
	Step3      StageCosts `bson:"step3" json:"step3"`
	Step4      StageCosts `bson:"step4" json:"step4"`
	Step5      StageCosts `bson:"step5" json:"step5"`
	Total      float64    `bson:"total" json:"total"`
}

// TokenCost 按 token 计费（单价为每百万 token 的美元价）
func TokenCost(tokens int, pricePerMillion float64) float64 {
	cost := float64(tokens) / 1_000_000 * pricePerMillion
	if cost < 0 {
		return 0
	}
	return cost
}

// CharacterCost 按字符计费（月度套餐价 / 套餐包含字符数）
func CharacterCost(characters int, monthlyPlanCost float64, includedCharacters int) float64 {
	if includedCharacters <= 0 {
		return 0
	}
	cost := float64(characters) * monthlyPlanCost / float64(includedCharacters)
	if cost < 0 {
		return 0
	}
	return cost
}

// RenderMinuteCost 按渲染分钟计费
func RenderMinuteCost(seconds float64, pricePerMinute float64) float64 {
	cost := seconds / 60 * pricePerMinute
	if cost < 0 {
		return 0
	}
	return cost
}

// Add 把一笔成本合入账本，返回新的账本（不修改原值）
// 规则：提供方总额、阶段内提供方小计、阶段总计、全局总计同步累加，其余字段不变
func Add(c Costs, provider Provider, stage Stage, delta float64) Costs {
	if delta <= 0 {
		return c
	}

	switch provider {
	case ProviderClaude:
		c.Claude += delta
	case ProviderElevenLabs:
		c.ElevenLabs += delta
	case ProviderShotstack:
		c.Shotstack += delta
	case ProviderFalImages:
		c.FalImages += delta
	case ProviderFalVideos:
		c.FalVideos += delta
	}

	sc := c.stage(stage)
	if sc != nil {
		switch provider {
		case ProviderClaude:
			sc.Claude += delta
		case ProviderElevenLabs:
			sc.ElevenLabs += delta
		case ProviderShotstack:
			sc.Shotstack += delta
		case ProviderFalImages:
			sc.FalImages += delta
		case ProviderFalVideos:
			sc.FalVideos += delta
		}
		sc.Total += delta
	}

	c.Total += delta
	return c
}

// IncPaths 把一笔成本展开为字段路径到增量的映射，供存储层做原子 $inc
// 路径相对于账本根：提供方总额、"{stage}.{provider}"、"{stage}.total"、"total"
// 与 Add 的累加规则一致；delta 非正时返回 nil
func IncPaths(provider Provider, stage Stage, delta float64) map[string]float64 {
	if delta <= 0 {
		return nil
	}

	paths := map[string]float64{"total": delta}

	switch provider {
	case ProviderClaude, ProviderElevenLabs, ProviderShotstack, ProviderFalImages, ProviderFalVideos:
		paths[string(provider)] = delta
	}

	switch stage {
	case StageScript, StageVoiceover, StageImages, StageVideos, StageAssembly:
		paths[string(stage)+".total"] = delta
		switch provider {
		case ProviderClaude, ProviderElevenLabs, ProviderShotstack, ProviderFalImages, ProviderFalVideos:
			paths[string(stage)+"."+string(provider)] = delta
		}
	}

	return paths
}

func (c *Costs) stage(stage Stage) *StageCosts {
	switch stage {
	case StageScript:
		return &c.Step1
	case StageVoiceover:
		return &c.Step2
	case StageImages:
		return &c.Step3
	case StageVideos:
		return &c.Step4
	case StageAssembly:
		return &c.Step5
	}
	return nil
}
