package respond

import (
	"strconv"
	"time"

	"plural_proxy_server/internal/model"
)

// SystemRespond 系统资料
type SystemRespond struct {
	Hid         string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tag         string    `json:"tag"`
	AvatarURL   string    `json:"avatar_url"`
	Created     time.Time `json:"created"`
	Accounts    []string  `json:"accounts,omitempty"`
}

// NewSystemRespond 由模型构建，accounts 可为 nil
func NewSystemRespond(s *model.System, accounts []int64) SystemRespond {
	rsp := SystemRespond{
		Hid:         s.Hid,
		Name:        s.Name,
		Description: s.Description,
		Tag:         s.Tag,
		AvatarURL:   s.AvatarURL,
		Created:     s.CreatedAt.UTC(),
	}
	for _, uid := range accounts {
		rsp.Accounts = append(rsp.Accounts, strconv.FormatInt(uid, 10))
	}
	return rsp
}
