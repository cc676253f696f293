package parser

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// SkillMatcher 在文本中匹配固定技能词表
// 规则：大小写不敏感的整词/整短语匹配；词表项中的特殊字符按字面量处理。
// 词表在启动时编译一次，匹配本身无失败路径。
type SkillMatcher struct {
	skills   []string         // 保持词表顺序，输出稳定
	patterns []*regexp.Regexp // 与skills一一对应
}

// NewSkillMatcher 编译词表为边界安全的正则
// "C++"这类首尾为非单词字符的词条不能用\b（\b要求两侧一侧为单词字符），
// 改用显式的非字母数字边界类
func NewSkillMatcher(vocabulary []string) (*SkillMatcher, error) {
	matcher := &SkillMatcher{
		skills:   make([]string, 0, len(vocabulary)),
		patterns: make([]*regexp.Regexp, 0, len(vocabulary)),
	}

	seen := make(map[string]bool, len(vocabulary))
	for _, skill := range vocabulary {
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true

		pattern, err := regexp.Compile(boundaryPattern(skill))
		if err != nil {
			return nil, fmt.Errorf("编译技能词 %q 的匹配模式失败: %w", skill, err)
		}
		matcher.skills = append(matcher.skills, skill)
		matcher.patterns = append(matcher.patterns, pattern)
	}

	return matcher, nil
}

// boundaryPattern 为单个技能词构造大小写不敏感的整词匹配模式
func boundaryPattern(skill string) string {
	first, _ := utf8.DecodeRuneInString(skill)
	last, _ := utf8.DecodeLastRuneInString(skill)

	left := `\b`
	if !isWordRune(first) {
		left = `(?:^|[^\p{L}\p{N}_])`
	}
	right := `\b`
	if !isWordRune(last) {
		right = `(?:[^\p{L}\p{N}_]|$)`
	}

	return `(?i)` + left + regexp.QuoteMeta(skill) + right
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// ExtractSkills 返回文本中出现的技能词
// 每个词表项至多出现一次（只看存在性，不计次数）；空文本返回空切片
func (m *SkillMatcher) ExtractSkills(text string) []string {
	found := make([]string, 0)
	if text == "" {
		return found
	}
	for i, pattern := range m.patterns {
		if pattern.MatchString(text) {
			found = append(found, m.skills[i])
		}
	}
	return found
}

// Vocabulary 返回词表（按编译顺序）
func (m *SkillMatcher) Vocabulary() []string {
	out := make([]string, len(m.skills))
	copy(out, m.skills)
	return out
}
