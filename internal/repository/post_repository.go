package repository

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/d60-Lab/linkboard/internal/apperror"
	"github.com/d60-Lab/linkboard/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id uint) (*model.Post, error)
	// ListRecent 按时间倒序返回全部帖子，附带作者和评论数
	ListRecent(ctx context.Context) ([]*model.Post, error)
	ListByAuthor(ctx context.Context, userID uint) ([]*model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

const selectWithCommentCount = "post.*, (SELECT COUNT(*) FROM comment WHERE comment.post_id = post.id) AS comment_count"

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Omit("Author").Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).
		Select(selectWithCommentCount).
		Preload("Author").
		First(&p, "post.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("post", strconv.FormatUint(uint64(id), 10))
		}
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) ListRecent(ctx context.Context) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Select(selectWithCommentCount).
		Preload("Author").
		Order("post.timestamp DESC, post.id DESC").
		Find(&res).Error
	return res, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, userID uint) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Select(selectWithCommentCount).
		Where("post.user_id = ?", userID).
		Order("post.timestamp DESC, post.id DESC").
		Find(&res).Error
	return res, err
}
