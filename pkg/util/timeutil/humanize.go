// Package timeutil 提供面向用户的时间格式化
package timeutil

import (
	"fmt"
	"time"
)

// HumanizeDelta 将时间差格式化为简短文本，只保留最高的两个单位
// 示例: "1d 2h", "3h 4m", "5m 6s", "7s"
func HumanizeDelta(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// HumanizeSince 格式化 t 距今的时间差
func HumanizeSince(t time.Time, now time.Time) string {
	return HumanizeDelta(now.Sub(t))
}
