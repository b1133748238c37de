// Package dbtest 为仓储与服务测试提供内存 SQLite 数据库
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"plural_proxy_server/internal/dao/mysql"
	"plural_proxy_server/internal/dao/mysql/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 打开一个以测试名隔离的内存数据库并完成迁移
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 单连接，事务内外共享同一内存库
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, mysql.Migrate(db))
	return db
}

// Repos 打开测试库并返回 Repository 聚合
func Repos(t *testing.T) *repository.Repositories {
	t.Helper()
	return repository.NewRepositories(Open(t))
}
