package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/linkboard/internal/api/middleware"
	"github.com/d60-Lab/linkboard/internal/apperror"
	"github.com/d60-Lab/linkboard/pkg/response"
)

// ListPostsAPI 帖子列表
// @Summary 帖子列表（新的在前）
// @Tags 帖子
// @Produce json
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/posts [get]
func (h *Handler) ListPostsAPI(c *gin.Context) {
	posts, err := h.postService.ListPosts(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"total": len(posts), "list": posts})
}

// ListCommentsAPI 帖子下对当前用户可见的评论
// @Summary 可见评论列表
// @Tags 帖子
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/posts/{id}/comments [get]
func (h *Handler) ListCommentsAPI(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.NotFound(c, "post not found")
		return
	}
	ctx := c.Request.Context()
	post, err := h.postService.GetPost(ctx, id)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	comments, err := h.commentService.VisibleComments(ctx, post.ID, middleware.CurrentUser(c).ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"post": post, "list": comments})
}

func writeAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, apperror.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, apperror.ErrConflict):
		response.Conflict(c, err.Error())
	case errors.Is(err, apperror.ErrUnauthorized):
		response.Unauthorized(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
