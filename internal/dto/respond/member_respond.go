package respond

import (
	"time"

	"plural_proxy_server/internal/model"
)

// MemberRespond 成员资料
type MemberRespond struct {
	Hid         string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	AvatarURL   string    `json:"avatar_url"`
	Pronouns    string    `json:"pronouns"`
	Description string    `json:"description"`
	Prefix      string    `json:"prefix"`
	Suffix      string    `json:"suffix"`
	Created     time.Time `json:"created"`
}

// NewMemberRespond 由模型构建
func NewMemberRespond(m *model.Member) MemberRespond {
	return MemberRespond{
		Hid:         m.Hid,
		Name:        m.Name,
		Color:       m.Color,
		AvatarURL:   m.AvatarURL,
		Pronouns:    m.Pronouns,
		Description: m.Description,
		Prefix:      m.Prefix,
		Suffix:      m.Suffix,
		Created:     m.CreatedAt.UTC(),
	}
}

// NewMemberListRespond 使用 make 初始化，确保序列化后是 [] 而不是 null
func NewMemberListRespond(members []model.Member) []MemberRespond {
	out := make([]MemberRespond, 0, len(members))
	for i := range members {
		out = append(out, NewMemberRespond(&members[i]))
	}
	return out
}
