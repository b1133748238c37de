package repository

import (
	"context"
	"time"

	"plural_proxy_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type switchRepository struct {
	db *gorm.DB
}

// NewSwitchRepository 创建切换 Repository
func NewSwitchRepository(db *gorm.DB) SwitchRepository {
	return &switchRepository{db: db}
}

// latestQuery 最近 n 条切换，同一时间按 id 倒序
func (r *switchRepository) latestQuery(ctx context.Context, systemID uint, n int) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("system_id = ?", systemID).
		Order("switched_at DESC").Order("id DESC").
		Limit(n)
}

// Latest 按时间倒序返回最近 n 条切换
func (r *switchRepository) Latest(ctx context.Context, systemID uint, n int) ([]model.Switch, error) {
	var switches []model.Switch
	if err := r.latestQuery(ctx, systemID, n).Find(&switches).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询切换记录 system_id=%d", systemID)
	}
	return switches, nil
}

// LatestForUpdate 同 Latest，对切换行加 FOR UPDATE 锁
func (r *switchRepository) LatestForUpdate(ctx context.Context, systemID uint, n int) ([]model.Switch, error) {
	var switches []model.Switch
	if err := r.latestQuery(ctx, systemID, n).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Find(&switches).Error; err != nil {
		return nil, wrapDBErrorf(err, "锁定切换记录 system_id=%d", systemID)
	}
	return switches, nil
}

// Create 创建切换事件，Members 随之写入
func (r *switchRepository) Create(ctx context.Context, sw *model.Switch) error {
	if err := r.db.WithContext(ctx).Create(sw).Error; err != nil {
		return wrapDBErrorf(err, "创建切换记录 system_id=%d", sw.SystemID)
	}
	return nil
}

// UpdateTimestamp 修改切换时间
func (r *switchRepository) UpdateTimestamp(ctx context.Context, id uint, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Switch{}).Where("id = ?", id).
		Update("switched_at", at.UTC()).Error; err != nil {
		return wrapDBErrorf(err, "更新切换时间 id=%d", id)
	}
	return nil
}

// DeleteMembershipsByMember 删除某成员的全部切换成员行
func (r *switchRepository) DeleteMembershipsByMember(ctx context.Context, memberID uint) error {
	if err := r.db.WithContext(ctx).Where("member_id = ?", memberID).
		Delete(&model.SwitchMember{}).Error; err != nil {
		return wrapDBErrorf(err, "删除成员切换记录 member_id=%d", memberID)
	}
	return nil
}
