package scripttools

import (
	"math"
	"strings"
	"unicode"

	"github.com/go-ego/gse"
)

// 场景时长约束：[1,15] 秒
const (
	MinSceneDuration = 1
	MaxSceneDuration = 15
)

// ClampSceneDuration 把场景时长钳制到合法区间
func ClampSceneDuration(seconds int) int {
	if seconds < MinSceneDuration {
		return MinSceneDuration
	}
	if seconds > MaxSceneDuration {
		return MaxSceneDuration
	}
	return seconds
}

// PacingEstimator 语速估算器
// 根据配音文本估算场景的朗读时长：CJK 文本按每秒约 12 字，
// 西文按每秒约 2.5 个词，取两者中较大的估值后钳制到 [1,15]。
type PacingEstimator struct {
	segmenter *gse.Segmenter // gse 分词器（分词失败时降级为空格切分）
}

// NewPacingEstimator 创建语速估算器实例
func NewPacingEstimator() *PacingEstimator {
	pe := &PacingEstimator{}
	if seg, err := gse.New(); err == nil {
		pe.segmenter = &seg
	}
	return pe
}

// EstimateSceneDuration 估算一段配音文本的朗读时长（秒）
func (pe *PacingEstimator) EstimateSceneDuration(voiceover string) int {
	text := StripPauses(voiceover)

	cjkChars := 0
	for _, r := range text {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) {
			cjkChars++
		}
	}

	words := pe.wordCount(text)

	byChars := int(math.Ceil(float64(cjkChars) / charactersPerSecond))
	byWords := int(math.Ceil(float64(words) / 2.5))

	seconds := byChars
	if byWords > seconds {
		seconds = byWords
	}
	return ClampSceneDuration(seconds)
}

// wordCount 统计词数（含 CJK 词），用于混排文本的语速估算
func (pe *PacingEstimator) wordCount(text string) int {
	if pe.segmenter != nil {
		count := 0
		for _, word := range pe.segmenter.Cut(text, false) {
			if strings.TrimFunc(word, func(r rune) bool {
				return unicode.IsSpace(r) || unicode.IsPunct(r)
			}) != "" {
				count++
			}
		}
		return count
	}
	return len(strings.Fields(text))
}
