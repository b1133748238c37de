package request

// RegisterSystemRequest 注册系统
type RegisterSystemRequest struct {
	Name string `json:"name" binding:"max=100"`
}

// UpdateSystemRequest 修改系统资料，未提供的字段保持不变
type UpdateSystemRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Tag         *string `json:"tag" binding:"omitempty,max=32"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,max=255"`
}

// AccountRequest 绑定/解绑账号
type AccountRequest struct {
	AccountID int64 `json:"account_id,string" binding:"required"`
}
