// Package mysql 提供数据访问层的初始化和全局数据库实例管理
// 负责建立 MySQL 连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"

	"plural_proxy_server/internal/config"
	"plural_proxy_server/internal/dao/mysql/repository"
	"plural_proxy_server/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Open 按配置建立 MySQL 连接
func Open(conf *config.MysqlConfig) (*gorm.DB, error) {
	// 格式：user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		conf.User,
		conf.Password,
		conf.Host,
		conf.Port,
		conf.DatabaseName,
	)
	return gorm.Open(mysqldriver.Open(dsn), &gorm.Config{})
}

// Migrate 自动迁移表结构
// 只新增表和字段，不会删除已有字段或数据
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.System{},
		&model.Account{},
		&model.Member{},
		&model.Webhook{},
		&model.Message{},
		&model.Switch{},
		&model.SwitchMember{},
		&model.Server{},
	)
}

// Init 初始化数据库连接、迁移表结构并返回 Repository 层实例
func Init() *repository.Repositories {
	conf := config.GetConfig()

	db, err := Open(&conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("connect mysql failed", zap.Error(err))
	}
	if err = Migrate(db); err != nil {
		zap.L().Fatal("migrate mysql failed", zap.Error(err))
	}

	return repository.NewRepositories(db)
}
