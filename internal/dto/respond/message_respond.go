package respond

import (
	"strconv"
	"time"

	"plural_proxy_server/internal/service/message"
)

// MessageInfoRespond 代理消息身份记录
// 平台 id 超出 JS 安全整数范围，统一按字符串输出
type MessageInfoRespond struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Member    struct {
		Hid       string `json:"id"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"member"`
	System struct {
		Hid  string `json:"id"`
		Name string `json:"name"`
	} `json:"system"`
}

// NewMessageInfoRespond 由服务结果构建
func NewMessageInfoRespond(info *message.Info) MessageInfoRespond {
	var rsp MessageInfoRespond
	rsp.ID = strconv.FormatInt(info.MID, 10)
	rsp.Channel = strconv.FormatInt(info.ChannelID, 10)
	rsp.Sender = strconv.FormatInt(info.Sender, 10)
	rsp.Content = info.Content
	rsp.Timestamp = info.Timestamp
	rsp.Member.Hid = info.Hid
	rsp.Member.Name = info.Name
	rsp.Member.AvatarURL = info.AvatarURL
	rsp.System.Hid = info.SystemHid
	rsp.System.Name = info.SystemName
	return rsp
}
