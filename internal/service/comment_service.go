package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/linkboard/internal/apperror"
	"github.com/d60-Lab/linkboard/internal/cache"
	"github.com/d60-Lab/linkboard/internal/model"
	"github.com/d60-Lab/linkboard/internal/repository"
	"github.com/d60-Lab/linkboard/pkg/logger"
)

// CommentService 评论与按屏蔽关系过滤的可见性
type CommentService interface {
	AddComment(ctx context.Context, authorID, postID uint, body string) (*model.Comment, error)
	VisibleComments(ctx context.Context, postID, viewerID uint) ([]*model.Comment, error)
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	cache    *cache.PostListCache
	now      func() time.Time
}

// NewCommentService listCache 与 PostService 共用；首页评论数随新评论失效，可以为 nil
func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, listCache *cache.PostListCache) CommentService {
	return &commentService{comments: comments, posts: posts, cache: listCache, now: time.Now}
}

// normalizeBody 去掉编辑器包裹的单层 <p>...</p>
func normalizeBody(body string) string {
	body = strings.TrimSpace(body)
	if strings.HasPrefix(body, "<p>") && strings.HasSuffix(body, "</p>") && strings.Count(body, "<p>") == 1 {
		body = strings.TrimSpace(body[len("<p>") : len(body)-len("</p>")])
	}
	return body
}

func (s *commentService) AddComment(ctx context.Context, authorID, postID uint, body string) (*model.Comment, error) {
	body = normalizeBody(body)
	if body == "" {
		return nil, apperror.ValidationFailed("comment", "This field is required.")
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	c := &model.Comment{
		Body:      body,
		Timestamp: s.now().UTC(),
		UserID:    authorID,
		PostID:    postID,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("invalidate post cache failed", zap.Uint("post_id", postID), zap.Error(err))
	}
	return c, nil
}

func (s *commentService) VisibleComments(ctx context.Context, postID, viewerID uint) ([]*model.Comment, error) {
	return s.comments.ListVisible(ctx, postID, viewerID)
}
