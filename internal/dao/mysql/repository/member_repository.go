package repository

import (
	"context"

	"plural_proxy_server/internal/model"

	"gorm.io/gorm"
)

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建成员 Repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// FindByHid 在系统内按 hid 查找成员
func (r *memberRepository) FindByHid(ctx context.Context, systemID uint, hid string) (*model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).Where("system_id = ? AND hid = ?", systemID, hid).
		First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询成员 hid=%s", hid)
	}
	return &member, nil
}

// FindBySystem 列出系统全部成员
func (r *memberRepository) FindBySystem(ctx context.Context, systemID uint) ([]model.Member, error) {
	var members []model.Member
	if err := r.db.WithContext(ctx).Where("system_id = ?", systemID).
		Order("id ASC").Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询系统成员 system_id=%d", systemID)
	}
	return members, nil
}

// FindByIDs 按 id 批量查找系统内成员
func (r *memberRepository) FindByIDs(ctx context.Context, systemID uint, ids []uint) ([]model.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var members []model.Member
	if err := r.db.WithContext(ctx).Where("system_id = ? AND id IN ?", systemID, ids).
		Find(&members).Error; err != nil {
		return nil, wrapDBError(err, "批量查询成员")
	}
	return members, nil
}

// FindProxyMembersByAccount 查找账号可代理的全部成员
// 结果按成员 id 排序，作为匹配时同优先级的自然顺序
func (r *memberRepository) FindProxyMembersByAccount(ctx context.Context, uid int64) ([]model.ProxyMember, error) {
	var members []model.ProxyMember
	err := r.db.WithContext(ctx).Table("members").
		Select("members.id, members.hid, members.prefix, members.suffix, members.color, members.name, "+
			"members.avatar_url, systems.tag, systems.name AS system_name, systems.hid AS system_hid").
		Joins("JOIN systems ON systems.id = members.system_id").
		Joins("JOIN accounts ON accounts.system_id = systems.id").
		Where("accounts.uid = ?", uid).
		Order("members.id ASC").
		Scan(&members).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询账号成员 uid=%d", uid)
	}
	return members, nil
}

// Create 创建成员
func (r *memberRepository) Create(ctx context.Context, member *model.Member) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return wrapDBError(err, "创建成员")
	}
	return nil
}

// Save 保存成员资料
func (r *memberRepository) Save(ctx context.Context, member *model.Member) error {
	if err := r.db.WithContext(ctx).Save(member).Error; err != nil {
		return wrapDBErrorf(err, "更新成员 hid=%s", member.Hid)
	}
	return nil
}

// Delete 删除成员
func (r *memberRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Member{}, id).Error; err != nil {
		return wrapDBErrorf(err, "删除成员 id=%d", id)
	}
	return nil
}

// HidExists 检查 hid 是否已被占用
func (r *memberRepository) HidExists(ctx context.Context, hid string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Member{}).Where("hid = ?", hid).Count(&count).Error; err != nil {
		return false, wrapDBError(err, "检查成员 hid")
	}
	return count > 0, nil
}
