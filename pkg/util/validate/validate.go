// Package validate 校验用户提交的资料字段
package validate

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v = validator.New()
	})
	return v
}

// AvatarURL 头像地址须为 http(s) 链接，空串表示清除
func AvatarURL(s string) bool {
	if s == "" {
		return true
	}
	return engine().Var(s, "http_url") == nil
}

// NormalizeColor 接受 "ff00aa" 或 "#FF00AA"，返回小写 6 位十六进制
func NormalizeColor(s string) (string, bool) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if s == "" {
		return "", true
	}
	if engine().Var(s, "len=6,hexadecimal") != nil {
		return "", false
	}
	return s, true
}
