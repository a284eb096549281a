package scripttools

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// JSONExtractor 从 LLM 输出中提取 JSON 负载
// LLM 返回的文本可能带有说明性文字或 markdown 代码围栏，
// 提取器需要容忍这些包裹，找不到 JSON 对象/数组时显式报错。
type JSONExtractor struct{}

// NewJSONExtractor 创建 JSON 提取器实例
func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{}
}

var jsonFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// Extract 从自由文本中提取第一个合法的 JSON 对象或数组
func (je *JSONExtractor) Extract(text string) (string, error) {
	// 1. 优先尝试 markdown 代码围栏内的内容
	if groups := jsonFencePattern.FindStringSubmatch(text); groups != nil {
		candidate := strings.TrimSpace(groups[1])
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	// 2. 扫描首个配平的 {...} 或 [...] 片段
	for i, r := range text {
		if r != '{' && r != '[' {
			continue
		}
		if candidate, ok := balancedFrom(text[i:]); ok {
			if json.Valid([]byte(candidate)) {
				return candidate, nil
			}
		}
	}

	return "", fmt.Errorf("no JSON object or array found in text (%d chars)", len(text))
}

// ExtractInto 提取 JSON 并反序列化到目标结构
func (je *JSONExtractor) ExtractInto(text string, dest any) error {
	payload, err := je.Extract(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return fmt.Errorf("unmarshal extracted JSON: %w", err)
	}
	return nil
}

// balancedFrom 从片段开头扫描到配平的结束括号，跳过字符串字面量
func balancedFrom(s string) (string, bool) {
	open := s[0]
	var close byte
	switch open {
	case '{':
		close = '}'
	case '[':
		close = ']'
	default:
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
