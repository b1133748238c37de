package repository

import (
	"errors"

	"plural_proxy_server/pkg/errorx"

	"gorm.io/gorm"
)

// wrapDBError 包装数据库错误
//   - ErrRecordNotFound -> CodeNotFound
//   - 其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf 同 wrapDBError，支持格式化消息
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}

// findOptional 查询单条记录，不存在时返回 (nil, nil)
// 用于"查无记录属于正常流程"的场景
func findOptional[T any](db *gorm.DB, query string, args ...any) (*T, error) {
	var out T
	err := db.Where(query, args...).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
