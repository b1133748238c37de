package switches

import (
	"strconv"
	"strings"
	"time"
)

// absoluteLayouts 支持的绝对时间格式，无时区时按 UTC 解释
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// ParseTime 解析切换时间
// 支持绝对时间，或相对时长（"2h30m"、"1d 4h" 表示多久之前）
func ParseTime(input string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, invalidTime(input)
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, "ago"))
	if d, ok := parseRelative(s); ok {
		return now.Add(-d).UTC(), nil
	}
	return time.Time{}, invalidTime(input)
}

// parseRelative 在 time.ParseDuration 的基础上支持天（d）
func parseRelative(s string) (time.Duration, bool) {
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}

	var total time.Duration
	if i := strings.Index(s, "d"); i >= 0 {
		days, err := strconv.Atoi(s[:i])
		if err != nil || days < 0 {
			return 0, false
		}
		total = time.Duration(days) * 24 * time.Hour
		s = s[i+1:]
	}
	if s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d < 0 {
			return 0, false
		}
		total += d
	}
	return total, true
}
