// Package proxy 实现代理消息路由：标签匹配、webhook 管理、代发与删除同步
package proxy

import (
	"regexp"
	"sort"
	"strings"

	"plural_proxy_server/internal/model"
)

// leadingMentionsRe 消息开头的一个或多个提及（用户/频道/角色/自定义表情），以空白分隔
var leadingMentionsRe = regexp.MustCompile(`^(<(@|@!|#|@&|a?:\w+:)\d+>\s*)+`)

// Match 标签匹配结果
type Match struct {
	Member  model.ProxyMember
	Content string // 去掉标签后的内容，开头的提及已放回
}

// extractLeadingMentions 拆出开头的提及，返回剩余文本与提及原文
func extractLeadingMentions(text string) (rest, mentions string) {
	loc := leadingMentionsRe.FindStringIndex(text)
	if loc == nil {
		return text, ""
	}
	return strings.TrimSpace(text[loc[1]:]), text[:loc[1]]
}

// matchMember 判断文本是否符合成员的代理标签，返回内部文本
// 前后缀都为空的成员永不匹配；空的内部文本（如 "[]"）是合法匹配
func matchMember(m *model.ProxyMember, text string) (string, bool) {
	if m.Prefix == "" && m.Suffix == "" {
		return "", false
	}

	rest, mentions := extractLeadingMentions(text)
	if !strings.HasPrefix(rest, m.Prefix) || !strings.HasSuffix(rest, m.Suffix) {
		return "", false
	}

	// 前后缀重叠时 end 可能小于 start
	start := len(m.Prefix)
	end := len(rest) - len(m.Suffix)
	inner := ""
	if end > start {
		inner = strings.TrimSpace(rest[start:end])
	}
	return mentions + inner, true
}

// specificity 同时有前后缀的成员优先
func specificity(m *model.ProxyMember) int {
	n := 0
	if m.Prefix != "" {
		n++
	}
	if m.Suffix != "" {
		n++
	}
	return n
}

// MatchTags 在候选成员中查找第一个匹配的成员
// 按 specificity 降序尝试，同级保持候选列表原有顺序
func MatchTags(candidates []model.ProxyMember, text string) (*Match, bool) {
	sorted := make([]model.ProxyMember, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return specificity(&sorted[i]) > specificity(&sorted[j])
	})

	for i := range sorted {
		if inner, ok := matchMember(&sorted[i], text); ok {
			return &Match{Member: sorted[i], Content: inner}, true
		}
	}
	return nil, false
}
