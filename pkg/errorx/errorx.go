package errorx

import (
	"errors"
	"fmt"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
type CodeError struct {
	Code  int    // 业务错误码
	Msg   string // 错误消息（面向用户，可原样展示）
	cause error  // 被包装的底层错误
}

// Error 实现 Go 标准 error 接口
// 当存在底层错误时，返回格式为 "消息: 底层错误"；否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 实现 errors.Unwrap 接口，支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// Is 同码即视为同一错误，便于与预定义实例比较
func (e *CodeError) Is(target error) bool {
	var t *CodeError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeNotFound, "成员不存在")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
// 用法: errorx.Wrapf(err, CodeNotFound, "成员 %s 不存在", hid)
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回默认码
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy // 默认返回服务繁忙
}

// HasCode 判断错误链中是否存在指定错误码
func HasCode(err error, code int) bool {
	for err != nil {
		var codeErr *CodeError
		if !errors.As(err, &codeErr) {
			return false
		}
		if codeErr.Code == code {
			return true
		}
		err = codeErr.cause
	}
	return false
}

// 业务状态码常量定义
const (
	CodeSuccess       = 1000 // 成功
	CodeInvalidParam  = 1001 // 请求参数错误
	CodeServerBusy    = 1005 // 服务繁忙
	CodeUnauthorized  = 1006 // 未授权/认证失败
	CodeNotFound      = 1008 // 资源不存在
	CodeDBError       = 1010 // 数据库错误
	CodeCacheError    = 1011 // 缓存错误
	CodePlatformError = 1012 // 聊天平台接口错误

	// 权限类错误：配置问题，原样反馈给用户，不自动重试
	CodeNoRelayPermission  = 2001 // 无法创建/使用 webhook
	CodeNoDeletePermission = 2002 // 已代发但无法删除原消息

	// 校验类错误：调用方输入问题
	CodeMembersAlreadyFronting     = 2101
	CodeDuplicateSwitchMembers     = 2102
	CodeCannotMoveSwitchToFuture   = 2103
	CodeCannotMoveSwitchBeforeLast = 2104
	CodeNoSwitches                 = 2105
	CodeInvalidTime                = 2106

	// 系统/成员管理
	CodeNoRegisteredSystem      = 2201
	CodeAlreadyRegisteredSystem = 2202
	CodeMemberNotFound          = 2203
	CodeTagTooLong              = 2204
	CodeInvalidAvatarURL        = 2205
	CodeAccountAlreadyLinked    = 2206
	CodeCannotUnlinkOnlyAccount = 2207
)

// 预定义常用错误实例
// 这些实例既可直接返回，也可用于 errors.Is 比较
var (
	ErrInvalidParam = New(CodeInvalidParam, "Invalid request parameters.")
	ErrServerBusy   = New(CodeServerBusy, "Something went wrong. Please try again later.")

	ErrNoRelayPermission = New(CodeNoRelayPermission,
		"Missing permission to manage webhooks in this channel, so the message was not proxied.")
	ErrNoDeletePermission = New(CodeNoDeletePermission,
		"The message was proxied, but the original could not be deleted (missing Manage Messages permission). Please remove it manually.")

	ErrDuplicateSwitchMembers   = New(CodeDuplicateSwitchMembers, "Duplicate members in switch list.")
	ErrCannotMoveSwitchToFuture = New(CodeCannotMoveSwitchToFuture, "Can't move switch to a time in the future.")
	ErrNoSwitches               = New(CodeNoSwitches, "There are no registered switches for this system.")

	ErrNoRegisteredSystem      = New(CodeNoRegisteredSystem, "You do not have a system registered.")
	ErrAlreadyRegisteredSystem = New(CodeAlreadyRegisteredSystem, "You already have a system registered.")
	ErrInvalidAvatarURL        = New(CodeInvalidAvatarURL, "Invalid avatar URL.")
	ErrCannotUnlinkOnlyAccount = New(CodeCannotUnlinkOnlyAccount, "This is the only account in your system, so you can't unlink it.")
)

// IsNotFound 检查错误是否为"未找到"类型（包括 gorm.ErrRecordNotFound）
func IsNotFound(err error) bool {
	if HasCode(err, CodeNotFound) {
		return true
	}
	return err != nil && err.Error() == "record not found"
}
