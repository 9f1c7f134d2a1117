package handler

import (
	"context"
	"errors"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/linkboard/internal/api/middleware"
	"github.com/d60-Lab/linkboard/internal/apperror"
	"github.com/d60-Lab/linkboard/internal/model"
	"github.com/d60-Lab/linkboard/internal/service"
	"github.com/d60-Lab/linkboard/pkg/logger"
	"github.com/d60-Lab/linkboard/pkg/response"
)

type blockRequest struct {
	Username string `json:"username" binding:"required"`
}

type blockResult struct {
	Username string `json:"username"`
	Blocking bool   `json:"blocking"`
	Changed  bool   `json:"changed"`
}

// Block 屏蔽用户，flash 提示后跳回来源页
func (h *Handler) Block(c *gin.Context) {
	h.toggleBlock(c, true)
}

// Unblock 取消屏蔽
func (h *Handler) Unblock(c *gin.Context) {
	h.toggleBlock(c, false)
}

func (h *Handler) toggleBlock(c *gin.Context, block bool) {
	viewer := middleware.CurrentUser(c)
	username := c.Param("username")
	fallback := "/profile/" + url.PathEscape(username)

	target, changed, err := h.applyBlock(c.Request.Context(), viewer, username, block)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		h.flash(c, "User "+username+" not found.")
		h.back(c, "/index")
		return
	case errors.Is(err, service.ErrBlockSelf):
		if block {
			h.flash(c, "You cannot block yourself!")
		} else {
			h.flash(c, "You cannot unblock yourself!")
		}
		h.back(c, fallback)
		return
	case err != nil:
		h.serverError(c, err)
		return
	}

	switch {
	case block && changed:
		h.flash(c, "You won't see comments from "+target.Username+" anymore, and they won't see yours.")
	case block:
		h.flash(c, "You are already blocking "+target.Username+".")
	case changed:
		h.flash(c, "You are no longer blocking "+target.Username+".")
	default:
		h.flash(c, "You are not blocking "+target.Username+".")
	}
	h.back(c, fallback)
}

func (h *Handler) applyBlock(ctx context.Context, viewer *model.User, username string, block bool) (*model.User, bool, error) {
	target, err := h.userService.GetByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	var changed bool
	if block {
		changed, err = h.relService.Block(ctx, viewer.ID, target.ID)
	} else {
		changed, err = h.relService.Unblock(ctx, viewer.ID, target.ID)
	}
	if err != nil {
		return target, false, err
	}
	if changed {
		logger.Info("block relation changed",
			zap.Uint("blocker_id", viewer.ID),
			zap.Uint("blocked_id", target.ID),
			zap.Bool("blocking", block),
		)
	}
	return target, changed, nil
}

// BlockUser 屏蔽用户（JSON）
// @Summary 屏蔽用户
// @Tags 关系链
// @Accept json
// @Produce json
// @Param request body blockRequest true "被屏蔽的用户名"
// @Success 200 {object} response.Response{data=blockResult}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/relations/block [post]
func (h *Handler) BlockUser(c *gin.Context) {
	h.toggleBlockJSON(c, true)
}

// UnblockUser 取消屏蔽（JSON）
// @Summary 取消屏蔽
// @Tags 关系链
// @Accept json
// @Produce json
// @Param request body blockRequest true "取消屏蔽的用户名"
// @Success 200 {object} response.Response{data=blockResult}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/relations/unblock [post]
func (h *Handler) UnblockUser(c *gin.Context) {
	h.toggleBlockJSON(c, false)
}

func (h *Handler) toggleBlockJSON(c *gin.Context, block bool) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	target, changed, err := h.applyBlock(c.Request.Context(), middleware.CurrentUser(c), req.Username, block)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	response.Success(c, blockResult{Username: target.Username, Blocking: block, Changed: changed})
}
