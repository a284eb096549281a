package scripttools

import (
	"fmt"
	"regexp"
	"strconv"
)

// 脚本中的停顿标记：[pause]、[pause:Ns]、[pause:Nms]
// 在送入语音合成前 1:1 翻译为 ElevenLabs 原生的 SSML break 标签，
// 这是一个纯文本变换，必须可以往返验证（一个标记对应且只对应一个 break）。

var pausePattern = regexp.MustCompile(`\[pause(?::(\d+(?:\.\d+)?)(s|ms))?\]`)

// TranslatePauses 把脚本中的停顿标记翻译为 SSML break 标签
// 无单位的 [pause] 默认 1 秒
func TranslatePauses(script string) string {
	return pausePattern.ReplaceAllStringFunc(script, func(match string) string {
		groups := pausePattern.FindStringSubmatch(match)
		seconds := 1.0
		if groups[1] != "" {
			value, err := strconv.ParseFloat(groups[1], 64)
			if err == nil {
				if groups[2] == "ms" {
					seconds = value / 1000
				} else {
					seconds = value
				}
			}
		}
		// %g 不丢精度：250ms 要保持 0.25s，而不是被截成 0.2s
		return fmt.Sprintf(`<break time="%gs" />`, seconds)
	})
}

// StripPauses 移除脚本中的停顿标记（用于字符计数与展示）
func StripPauses(script string) string {
	return pausePattern.ReplaceAllString(script, "")
}
