package system

import (
	"strings"

	"plural_proxy_server/internal/model"
	"plural_proxy_server/pkg/errorx"
	"plural_proxy_server/pkg/util/validate"
)

// Update 系统资料的一项修改
// 仅本包内的类型实现该接口，修改种类是封闭的
type Update interface {
	apply(s *model.System) error
}

// SetName 修改系统名
type SetName struct{ Name string }

// SetDescription 修改描述
type SetDescription struct{ Description string }

// SetTag 修改系统标签，空串表示清除
type SetTag struct{ Tag string }

// SetAvatar 修改头像，空串表示清除
type SetAvatar struct{ URL string }

func (u SetName) apply(s *model.System) error {
	s.Name = strings.TrimSpace(u.Name)
	return nil
}

func (u SetDescription) apply(s *model.System) error {
	s.Description = u.Description
	return nil
}

func (u SetTag) apply(s *model.System) error {
	s.Tag = strings.TrimSpace(u.Tag)
	return nil
}

func (u SetAvatar) apply(s *model.System) error {
	if !validate.AvatarURL(u.URL) {
		return errorx.ErrInvalidAvatarURL
	}
	s.AvatarURL = u.URL
	return nil
}
