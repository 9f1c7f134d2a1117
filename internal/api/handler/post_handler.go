package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/linkboard/internal/api/middleware"
	"github.com/d60-Lab/linkboard/internal/apperror"
	"github.com/d60-Lab/linkboard/internal/model"
	"github.com/d60-Lab/linkboard/pkg/logger"
)

// Index 首页：全部帖子，新的在前
func (h *Handler) Index(c *gin.Context) {
	posts, err := h.postService.ListPosts(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "index.html", gin.H{"Title": "Home", "Posts": posts})
}

// ShowPost 帖子详情 + 对当前用户可见的评论
func (h *Handler) ShowPost(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	h.renderPost(c, http.StatusOK, post, commentForm{}, nil)
}

// AddComment 发表评论
func (h *Handler) AddComment(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)

	var form commentForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderPost(c, http.StatusOK, post, form, formErrors(err))
		return
	}
	comment, err := h.commentService.AddComment(c.Request.Context(), user.ID, post.ID, form.Comment)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			h.renderPost(c, http.StatusOK, post, form, map[string]string{"comment": apperror.MessageOf(err, "Invalid value.")})
			return
		}
		h.fail(c, err)
		return
	}
	logger.Debug("comment added", zap.Uint("comment_id", comment.ID), zap.Uint("post_id", post.ID))
	c.Redirect(http.StatusFound, "/post/"+strconv.FormatUint(uint64(post.ID), 10))
}

func (h *Handler) loadPost(c *gin.Context) (*model.Post, bool) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		h.notFound(c)
		return nil, false
	}
	post, err := h.postService.GetPost(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return post, true
}

func (h *Handler) renderPost(c *gin.Context, status int, post *model.Post, form commentForm, errs map[string]string) {
	user := middleware.CurrentUser(c)
	comments, err := h.commentService.VisibleComments(c.Request.Context(), post.ID, user.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, status, "post.html", gin.H{
		"Title":    post.Title,
		"Post":     post,
		"Comments": comments,
		"Form":     form,
		"Errors":   errs,
	})
}

// ShowSubmit 发帖页
func (h *Handler) ShowSubmit(c *gin.Context) {
	h.render(c, http.StatusOK, "submit.html", gin.H{"Title": "Submit", "Form": postForm{}})
}

// Submit 发帖
func (h *Handler) Submit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusOK, "submit.html", gin.H{"Title": "Submit", "Form": form, "Errors": formErrors(err)})
		return
	}
	post, err := h.postService.CreatePost(c.Request.Context(), user.ID, form.Title, form.URL)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			field := apperror.FieldOf(err)
			if field == "" {
				field = "url"
			}
			h.render(c, http.StatusOK, "submit.html", gin.H{
				"Title": "Submit", "Form": form,
				"Errors": map[string]string{field: apperror.MessageOf(err, "Invalid value.")},
			})
			return
		}
		h.serverError(c, err)
		return
	}
	logger.Info("post created", zap.Uint("post_id", post.ID), zap.String("source", post.Source))
	h.flash(c, "Your post is now live!")
	c.Redirect(http.StatusFound, "/index")
}
