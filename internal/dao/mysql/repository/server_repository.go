package repository

import (
	"context"

	"plural_proxy_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type serverRepository struct {
	db *gorm.DB
}

// NewServerRepository 创建服务器配置 Repository
func NewServerRepository(db *gorm.DB) ServerRepository {
	return &serverRepository{db: db}
}

// Find 查找服务器配置
func (r *serverRepository) Find(ctx context.Context, id int64) (*model.Server, error) {
	server, err := findOptional[model.Server](r.db.WithContext(ctx), "id = ?", id)
	if err != nil {
		return nil, wrapDBErrorf(err, "查询服务器配置 id=%d", id)
	}
	return server, nil
}

// SetLogChannel 设置日志频道
func (r *serverRepository) SetLogChannel(ctx context.Context, id int64, channelID int64) error {
	server := model.Server{ID: id, LogChannel: channelID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"log_channel"}),
	}).Create(&server).Error
	if err != nil {
		return wrapDBErrorf(err, "设置日志频道 server=%d", id)
	}
	return nil
}
