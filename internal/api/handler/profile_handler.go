package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/linkboard/internal/api/middleware"
	"github.com/d60-Lab/linkboard/internal/model"
)

// Profile 用户主页：帖子列表；看自己时列出已屏蔽的人，看别人时给出屏蔽/取消屏蔽状态
func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := middleware.CurrentUser(c)

	user, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	posts, err := h.postService.ListByAuthor(ctx, user.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}

	data := gin.H{
		"Title":  user.Username,
		"User":   user,
		"Posts":  posts,
		"IsSelf": viewer.ID == user.ID,
	}
	if viewer.ID == user.ID {
		var blocked []*model.User
		if blocked, err = h.relService.ListBlocked(ctx, viewer.ID); err != nil {
			h.serverError(c, err)
			return
		}
		data["Blocked"] = blocked
	} else {
		blocking, err := h.relService.IsBlocking(ctx, viewer.ID, user.ID)
		if err != nil {
			h.serverError(c, err)
			return
		}
		data["Blocking"] = blocking
	}
	h.render(c, http.StatusOK, "profile.html", data)
}
