package scripttools

import (
	"math"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"reelforge/internal/pkg/apperr"
)

// 脚本长度闸门：脚本要长到撑满每个场景约 8 秒、每秒约 12 个字符的配音，
// 又不能溢出太多。下限是硬性的，上限只告警。

const (
	secondsPerScene     = 8
	charactersPerSecond = 12
	minLengthRatio      = 0.85
)

// ScriptBounds 根据场景数计算脚本的字符数上下限
func ScriptBounds(sceneCount int) (minChars, maxChars int) {
	maxChars = int(math.Floor(float64(sceneCount) * secondsPerScene * charactersPerSecond))
	minChars = int(math.Floor(float64(maxChars) * minLengthRatio))
	return minChars, maxChars
}

// CheckScriptLength 校验生成的脚本长度
// 短于下限返回 PreconditionError（阶段失败），超过上限仅记录告警
func CheckScriptLength(script string, sceneCount int) error {
	minChars, maxChars := ScriptBounds(sceneCount)
	length := utf8.RuneCountInString(StripPauses(script))

	if length < minChars {
		return apperr.NewPrecondition(
			"generated script too short: %d characters, need at least %d for %d scenes",
			length, minChars, sceneCount)
	}

	if length > maxChars {
		log.Warn().
			Int("length", length).
			Int("max_chars", maxChars).
			Int("scene_count", sceneCount).
			Msg("脚本超出软上限，仍然接受")
	}

	return nil
}
