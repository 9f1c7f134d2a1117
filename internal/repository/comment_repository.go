package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/linkboard/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	// ListVisible 返回 viewer 可见的评论（时间正序）：
	// 排除 viewer 屏蔽的人写的评论，也排除屏蔽了 viewer 的人写的评论
	ListVisible(ctx context.Context, postID, viewerID uint) ([]*model.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Omit("Author").Create(comment).Error
}

func (r *commentRepository) ListVisible(ctx context.Context, postID, viewerID uint) ([]*model.Comment, error) {
	var res []*model.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("comment.post_id = ?", postID).
		Where("NOT EXISTS (SELECT 1 FROM blockers b WHERE b.blocker_id = ? AND b.blocked_id = comment.user_id)", viewerID).
		Where("NOT EXISTS (SELECT 1 FROM blockers b WHERE b.blocker_id = comment.user_id AND b.blocked_id = ?)", viewerID).
		Order("comment.timestamp ASC, comment.id ASC").
		Find(&res).Error
	return res, err
}
