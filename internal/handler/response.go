package handler

import (
	"errors"
	"net/http"
	"time"

	"plural_proxy_server/internal/service/switches"
	"plural_proxy_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ResponseData 统一响应结构，HTTP 状态码恒为 200，结果看 code
type ResponseData struct {
	Code int `json:"code"`
	Msg  any `json:"msg"`
	Data any `json:"data"`
}

// SwitchMoveRejected 移动切换被拒绝时附带的倒数第二次切换时间
type SwitchMoveRejected struct {
	SecondLast time.Time `json:"second_last"`
}

func writeResponse(c *gin.Context, code int, msg any, data any) {
	c.JSON(http.StatusOK, ResponseData{Code: code, Msg: msg, Data: data})
}

// HandleSuccess 返回成功响应
func HandleSuccess(c *gin.Context, data any) {
	writeResponse(c, errorx.CodeSuccess, "success", data)
}

// HandleError 业务错误原样返回码与消息
// 存储与平台错误只把原因写进日志，对外保留 CodeError 的消息
// 非 CodeError 一律视为服务繁忙
func HandleError(c *gin.Context, err error) {
	var moveErr *switches.BeforeLastSwitchError
	if errors.As(err, &moveErr) {
		writeResponse(c, moveErr.Code, moveErr.Msg, SwitchMoveRejected{SecondLast: moveErr.SecondLast})
		return
	}

	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		switch codeErr.Code {
		case errorx.CodeDBError, errorx.CodeCacheError, errorx.CodePlatformError:
			logRequestError(c, codeErr.Code, err)
		}
		writeResponse(c, codeErr.Code, codeErr.Msg, nil)
		return
	}

	logRequestError(c, errorx.CodeServerBusy, err)
	writeResponse(c, errorx.ErrServerBusy.Code, errorx.ErrServerBusy.Msg, nil)
}

// HandleParamError 参数绑定失败，validator 错误按字段翻译
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		writeResponse(c, errorx.ErrInvalidParam.Code, RemoveTopStruct(validationErrs.Translate(Trans)), nil)
		return
	}

	// JSON 格式错误等
	zap.L().Debug("param bind error", zap.String("path", c.FullPath()), zap.Error(err))
	writeResponse(c, errorx.ErrInvalidParam.Code, errorx.ErrInvalidParam.Msg, nil)
}

func logRequestError(c *gin.Context, code int, err error) {
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("route", c.FullPath()),
		zap.Int("code", code),
		zap.Error(err),
	}
	if uid, ok := accountID(c); ok {
		fields = append(fields, zap.Int64("account_id", uid))
	}
	zap.L().Error("request failed", fields...)
}
