package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/linkboard/internal/model"
)

type BlockRepository interface {
	Create(ctx context.Context, blockerID, blockedID uint) error
	Delete(ctx context.Context, blockerID, blockedID uint) error
	Exists(ctx context.Context, blockerID, blockedID uint) (bool, error)
	ListBlocked(ctx context.Context, blockerID uint) ([]*model.User, error)
}

type blockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) BlockRepository { return &blockRepository{db: db} }

func (r *blockRepository) Create(ctx context.Context, blockerID, blockedID uint) error {
	b := &model.Block{BlockerID: blockerID, BlockedID: blockedID, CreatedAt: time.Now().UTC()}
	// 幂等：重复屏蔽不报错
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(b).Error
}

func (r *blockRepository) Delete(ctx context.Context, blockerID, blockedID uint) error {
	return r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&model.Block{}).Error
}

func (r *blockRepository) Exists(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *blockRepository) ListBlocked(ctx context.Context, blockerID uint) ([]*model.User, error) {
	var res []*model.User
	err := r.db.WithContext(ctx).
		Joins(`JOIN blockers ON blockers.blocked_id = "user".id`).
		Where("blockers.blocker_id = ?", blockerID).
		Order(`"user".username ASC`).
		Find(&res).Error
	return res, err
}
