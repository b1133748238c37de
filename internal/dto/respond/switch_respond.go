package respond

import (
	"time"

	"plural_proxy_server/internal/service/switches"
)

// FrontersRespond 当前前台
type FrontersRespond struct {
	Members []MemberRespond `json:"members"`
	Since   *time.Time      `json:"timestamp"`
}

// SwitchRespond 一次切换
type SwitchRespond struct {
	Timestamp time.Time `json:"timestamp"`
	Members   []string  `json:"members"` // 成员 hid，按前台顺序
}

// NewFrontersRespond 由服务结果构建
func NewFrontersRespond(f *switches.Front) FrontersRespond {
	return FrontersRespond{
		Members: NewMemberListRespond(f.Members),
		Since:   f.Since,
	}
}

// NewSwitchRespond 由服务结果构建
func NewSwitchRespond(e *switches.Entry) SwitchRespond {
	rsp := SwitchRespond{Timestamp: e.Timestamp, Members: make([]string, 0, len(e.Members))}
	for _, m := range e.Members {
		rsp.Members = append(rsp.Members, m.Hid)
	}
	return rsp
}

// NewSwitchListRespond 由服务结果构建
func NewSwitchListRespond(entries []switches.Entry) []SwitchRespond {
	out := make([]SwitchRespond, 0, len(entries))
	for i := range entries {
		out = append(out, NewSwitchRespond(&entries[i]))
	}
	return out
}
