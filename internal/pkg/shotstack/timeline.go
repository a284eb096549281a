package shotstack

// Edit 一次渲染任务的完整描述
type Edit struct {
	Timeline Timeline `json:"timeline"`
	Output   Output   `json:"output"`
}

// Timeline 时间轴，轨道按声明顺序自上而下叠放
type Timeline struct {
	Background string  `json:"background,omitempty"`
	Tracks     []Track `json:"tracks"`
}

// Track 单条轨道
type Track struct {
	Clips []Clip `json:"clips"`
}

// Clip 轨道上的一个片段
// Length 为 float64 秒数或字符串 "auto"（取素材自身长度）
type Clip struct {
	Asset  Asset   `json:"asset"`
	Start  float64 `json:"start"`
	Length any     `json:"length"`
	Fit    string  `json:"fit,omitempty"`
}

// Asset 片段引用的素材
type Asset struct {
	Type   string   `json:"type"`
	Src    string   `json:"src"`
	Volume *float64 `json:"volume,omitempty"`
}

// Output 渲染输出参数
type Output struct {
	Format      string `json:"format"`
	Resolution  string `json:"resolution,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

// VideoClip 构造视频片段
func VideoClip(src string, start, length float64) Clip {
	return Clip{
		Asset:  Asset{Type: "video", Src: src},
		Start:  start,
		Length: length,
		Fit:    "cover",
	}
}

// AudioClip 构造音频片段，length 传 "auto" 时取素材全长
func AudioClip(src string, start float64, length any, volume float64) Clip {
	return Clip{
		Asset:  Asset{Type: "audio", Src: src, Volume: &volume},
		Start:  start,
		Length: length,
	}
}
