package member

import (
	"strings"

	"plural_proxy_server/internal/model"
	"plural_proxy_server/pkg/errorx"
	"plural_proxy_server/pkg/util/validate"
)

// Update 成员资料的一项修改
// 仅本包内的类型实现该接口，修改种类是封闭的
type Update interface {
	apply(m *model.Member) error
	// affectsProxy 修改后是否需要刷新代理匹配缓存
	affectsProxy() bool
}

// SetName 修改显示名
type SetName struct{ Name string }

// SetDescription 修改描述
type SetDescription struct{ Description string }

// SetPronouns 修改代词
type SetPronouns struct{ Pronouns string }

// SetColor 修改颜色，空串表示清除
type SetColor struct{ Color string }

// SetAvatar 修改头像，空串表示清除
type SetAvatar struct{ URL string }

// SetProxyTags 修改代理前缀与后缀，均为空表示不再代理
type SetProxyTags struct {
	Prefix string
	Suffix string
}

func (u SetName) apply(m *model.Member) error {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		return errorx.New(errorx.CodeInvalidParam, "Member name can't be empty.")
	}
	m.Name = name
	return nil
}

func (u SetName) affectsProxy() bool { return true }

func (u SetDescription) apply(m *model.Member) error {
	m.Description = u.Description
	return nil
}

func (u SetDescription) affectsProxy() bool { return false }

func (u SetPronouns) apply(m *model.Member) error {
	m.Pronouns = u.Pronouns
	return nil
}

func (u SetPronouns) affectsProxy() bool { return false }

func (u SetColor) apply(m *model.Member) error {
	color, ok := validate.NormalizeColor(u.Color)
	if !ok {
		return errorx.Newf(errorx.CodeInvalidParam, "'%s' is not a valid color.", u.Color)
	}
	m.Color = color
	return nil
}

func (u SetColor) affectsProxy() bool { return true }

func (u SetAvatar) apply(m *model.Member) error {
	if !validate.AvatarURL(u.URL) {
		return errorx.ErrInvalidAvatarURL
	}
	m.AvatarURL = u.URL
	return nil
}

func (u SetAvatar) affectsProxy() bool { return true }

func (u SetProxyTags) apply(m *model.Member) error {
	m.Prefix = u.Prefix
	m.Suffix = u.Suffix
	return nil
}

func (u SetProxyTags) affectsProxy() bool { return true }
