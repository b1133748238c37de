package request

// CreateMemberRequest 创建成员
type CreateMemberRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// ProxyTags 代理前缀与后缀
type ProxyTags struct {
	Prefix string `json:"prefix" binding:"max=100"`
	Suffix string `json:"suffix" binding:"max=100"`
}

// UpdateMemberRequest 修改成员资料，未提供的字段保持不变
type UpdateMemberRequest struct {
	Name        *string    `json:"name" binding:"omitempty,max=100"`
	Description *string    `json:"description" binding:"omitempty,max=1000"`
	Pronouns    *string    `json:"pronouns" binding:"omitempty,max=100"`
	Color       *string    `json:"color" binding:"omitempty,max=7"`
	AvatarURL   *string    `json:"avatar_url" binding:"omitempty,max=255"`
	ProxyTags   *ProxyTags `json:"proxy_tags"`
}

// MemberHidUri 路径中的成员 hid
type MemberHidUri struct {
	Hid string `uri:"hid" binding:"required,len=5"`
}
