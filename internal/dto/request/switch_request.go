package request

// RegisterSwitchRequest 记录切换，members 为成员 hid，空数组表示无人在前台
type RegisterSwitchRequest struct {
	Members []string `json:"members" binding:"max=100,dive,len=5"`
}

// MoveSwitchRequest 修改最近一次切换时间
// time 为 RFC3339 时间，或 "2h30m" 这样的相对时长（表示多久之前）
type MoveSwitchRequest struct {
	Time string `json:"time" binding:"required"`
}

// SwitchHistoryQuery 切换历史查询参数
type SwitchHistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
