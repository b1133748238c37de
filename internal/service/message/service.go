// Package message 查询代理消息的身份记录
package message

import (
	"context"
	"time"

	"plural_proxy_server/internal/dao/mysql/repository"
	"plural_proxy_server/internal/model"
	"plural_proxy_server/pkg/errorx"
	"plural_proxy_server/pkg/util/snowflake"
)

// Info 身份记录及由消息 id 推出的发送时间
type Info struct {
	model.MessageInfo
	Timestamp time.Time
}

// messageService 消息业务逻辑实现
type messageService struct {
	repos *repository.Repositories
}

// NewMessageService 构造函数
func NewMessageService(repos *repository.Repositories) *messageService {
	return &messageService{repos: repos}
}

// Info 按代理消息 id 查询
func (m *messageService) Info(ctx context.Context, mid int64) (*Info, error) {
	info, err := m.repos.Message.FindInfo(ctx, mid)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errorx.Newf(errorx.CodeNotFound, "Message with ID '%d' not found.", mid)
	}
	return &Info{MessageInfo: *info, Timestamp: snowflake.Time(info.MID)}, nil
}
