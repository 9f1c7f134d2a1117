package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/linkboard/internal/apperror"
	"github.com/d60-Lab/linkboard/internal/cache"
	"github.com/d60-Lab/linkboard/internal/model"
	"github.com/d60-Lab/linkboard/internal/repository"
	"github.com/d60-Lab/linkboard/pkg/logger"
)

// PostService 帖子发布与首页列表
type PostService interface {
	CreatePost(ctx context.Context, authorID uint, title, rawURL string) (*model.Post, error)
	ListPosts(ctx context.Context) ([]*model.Post, error)
	GetPost(ctx context.Context, id uint) (*model.Post, error)
	ListByAuthor(ctx context.Context, userID uint) ([]*model.Post, error)
}

type postService struct {
	posts repository.PostRepository
	cache *cache.PostListCache
	now   func() time.Time
}

// NewPostService cache 可以为 nil
func NewPostService(posts repository.PostRepository, listCache *cache.PostListCache) PostService {
	return &postService{posts: posts, cache: listCache, now: time.Now}
}

// ParseSource 规范化 URL 并取出 host 作为来源。
// 没有 scheme 的输入（如 www.example.com）按 http 处理
func ParseSource(raw string) (normalized, source string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", apperror.ValidationFailed("url", "This field is required.")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, perr := url.Parse(raw)
	if perr != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" || strings.ContainsAny(u.Hostname(), " \t") {
		return "", "", apperror.ValidationFailed("url", "Invalid URL.")
	}
	if !strings.Contains(u.Hostname(), ".") && u.Hostname() != "localhost" {
		return "", "", apperror.ValidationFailed("url", "Invalid URL.")
	}
	return u.String(), strings.ToLower(u.Hostname()), nil
}

func (s *postService) CreatePost(ctx context.Context, authorID uint, title, rawURL string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "This field is required.")
	}
	normalized, source, err := ParseSource(rawURL)
	if err != nil {
		return nil, err
	}

	p := &model.Post{
		Title:     title,
		URL:       normalized,
		Source:    source,
		Timestamp: s.now().UTC(),
		UserID:    authorID,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("invalidate post cache failed", zap.Error(err))
	}
	return p, nil
}

func (s *postService) ListPosts(ctx context.Context) ([]*model.Post, error) {
	if posts, hit, err := s.cache.Get(ctx); err != nil {
		logger.Warn("read post cache failed", zap.Error(err))
	} else if hit {
		return posts, nil
	}

	posts, err := s.posts.ListRecent(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, posts); err != nil {
		logger.Warn("fill post cache failed", zap.Error(err))
	}
	return posts, nil
}

func (s *postService) GetPost(ctx context.Context, id uint) (*model.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *postService) ListByAuthor(ctx context.Context, userID uint) ([]*model.Post, error) {
	return s.posts.ListByAuthor(ctx, userID)
}
