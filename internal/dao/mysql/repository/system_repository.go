package repository

import (
	"context"

	"plural_proxy_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type systemRepository struct {
	db *gorm.DB
}

// NewSystemRepository 创建系统 Repository
func NewSystemRepository(db *gorm.DB) SystemRepository {
	return &systemRepository{db: db}
}

// FindByID 按 id 查找系统
func (r *systemRepository) FindByID(ctx context.Context, id uint) (*model.System, error) {
	var system model.System
	if err := r.db.WithContext(ctx).First(&system, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询系统 id=%d", id)
	}
	return &system, nil
}

// FindByAccount 查找账号所属系统
func (r *systemRepository) FindByAccount(ctx context.Context, uid int64) (*model.System, error) {
	system, err := findOptional[model.System](
		r.db.WithContext(ctx).Joins("JOIN accounts ON accounts.system_id = systems.id"),
		"accounts.uid = ?", uid)
	if err != nil {
		return nil, wrapDBErrorf(err, "查询账号所属系统 uid=%d", uid)
	}
	return system, nil
}

// Create 创建系统
func (r *systemRepository) Create(ctx context.Context, system *model.System) error {
	if err := r.db.WithContext(ctx).Create(system).Error; err != nil {
		return wrapDBError(err, "创建系统")
	}
	return nil
}

// Save 保存系统资料
func (r *systemRepository) Save(ctx context.Context, system *model.System) error {
	if err := r.db.WithContext(ctx).Save(system).Error; err != nil {
		return wrapDBErrorf(err, "更新系统 hid=%s", system.Hid)
	}
	return nil
}

// HidExists 检查 hid 是否已被占用
func (r *systemRepository) HidExists(ctx context.Context, hid string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.System{}).Where("hid = ?", hid).Count(&count).Error; err != nil {
		return false, wrapDBError(err, "检查系统 hid")
	}
	return count > 0, nil
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建账号绑定 Repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// FindByUID 查找账号绑定
func (r *accountRepository) FindByUID(ctx context.Context, uid int64) (*model.Account, error) {
	account, err := findOptional[model.Account](r.db.WithContext(ctx), "uid = ?", uid)
	if err != nil {
		return nil, wrapDBErrorf(err, "查询账号 uid=%d", uid)
	}
	return account, nil
}

// Link 将账号绑定到系统，重复绑定同一系统视为成功
func (r *accountRepository) Link(ctx context.Context, uid int64, systemID uint) error {
	account := model.Account{UID: uid, SystemID: systemID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&account).Error; err != nil {
		return wrapDBErrorf(err, "绑定账号 uid=%d", uid)
	}
	return nil
}

// Unlink 解除账号绑定
func (r *accountRepository) Unlink(ctx context.Context, uid int64, systemID uint) error {
	if err := r.db.WithContext(ctx).Where("uid = ? AND system_id = ?", uid, systemID).
		Delete(&model.Account{}).Error; err != nil {
		return wrapDBErrorf(err, "解绑账号 uid=%d", uid)
	}
	return nil
}

// ListBySystem 列出系统绑定的全部账号
func (r *accountRepository) ListBySystem(ctx context.Context, systemID uint) ([]int64, error) {
	var uids []int64
	if err := r.db.WithContext(ctx).Model(&model.Account{}).Where("system_id = ?", systemID).
		Order("uid ASC").Pluck("uid", &uids).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询系统账号 system_id=%d", systemID)
	}
	return uids, nil
}
