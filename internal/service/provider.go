// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"plural_proxy_server/internal/dao/mysql/repository"
	myredis "plural_proxy_server/internal/dao/redis"
	"plural_proxy_server/internal/service/member"
	"plural_proxy_server/internal/service/message"
	"plural_proxy_server/internal/service/switches"
	"plural_proxy_server/internal/service/system"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层与代理路由通过此结构访问各个 Service
type Services struct {
	System  SystemService
	Member  MemberService
	Switch  SwitchService
	Message MessageService
}

// NewServices 创建并注入所有 Service 实例
// cache 为 nil 时成员服务不使用缓存
func NewServices(repos *repository.Repositories, cache myredis.AsyncCacheService) *Services {
	memberSvc := member.NewMemberService(repos, cache)

	return &Services{
		System:  system.NewSystemService(repos, memberSvc),
		Member:  memberSvc,
		Switch:  switches.NewLedger(repos),
		Message: message.NewMessageService(repos),
	}
}
