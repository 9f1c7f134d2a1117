package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/linkboard/internal/api/middleware"
	"github.com/d60-Lab/linkboard/internal/apperror"
	"github.com/d60-Lab/linkboard/internal/service"
	"github.com/d60-Lab/linkboard/pkg/logger"
)

// ShowLogin 登录页，已登录直接回首页
func (h *Handler) ShowLogin(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/index")
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Sign In",
		"Form":  loginForm{},
		"Next":  c.Query("next"),
	})
}

// Login 处理登录表单
func (h *Handler) Login(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/index")
		return
	}
	var form loginForm
	next := c.Query("next")
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusOK, "login.html", gin.H{
			"Title": "Sign In", "Form": form, "Next": next, "Errors": formErrors(err),
		})
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.render(c, http.StatusUnauthorized, "login.html", gin.H{
				"Title": "Sign In", "Form": loginForm{Username: form.Username}, "Next": next,
				"Error": service.ErrInvalidCredentials.Error(),
			})
			return
		}
		h.serverError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		h.serverError(c, err)
		return
	}
	if form.RememberMe && h.tokens != nil {
		token, err := h.tokens.Issue(user.ID)
		if err != nil {
			logger.Warn("issue remember token failed", zap.Uint("user_id", user.ID), zap.Error(err))
		} else {
			middleware.SetRememberCookie(c, token, h.tokens)
		}
	}
	logger.Info("user logged in", zap.Uint("user_id", user.ID))

	target, ok := localPath(next)
	if !ok {
		target = "/index"
	}
	c.Redirect(http.StatusFound, target)
}

// Logout 清空 session 和记住我 cookie
func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		logger.Warn("clear session failed", zap.Error(err))
	}
	middleware.ClearRememberCookie(c)
	c.Redirect(http.StatusFound, "/index")
}

// ShowRegister 注册页
func (h *Handler) ShowRegister(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/index")
		return
	}
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": registerForm{}})
}

// Register 处理注册表单
func (h *Handler) Register(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/index")
		return
	}
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderRegister(c, form, formErrors(err))
		return
	}
	birthday, err := time.Parse("2006-01-02", form.Birthday)
	if err != nil {
		h.renderRegister(c, form, map[string]string{"birthday": "Not a valid date value."})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), service.RegisterInput{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Username:  form.Username,
		Email:     form.Email,
		Birthday:  &birthday,
		Password:  form.Password,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrConflict) {
			field := apperror.FieldOf(err)
			if field == "" {
				field = "form"
			}
			h.renderRegister(c, form, map[string]string{field: apperror.MessageOf(err, "Invalid value.")})
			return
		}
		h.serverError(c, err)
		return
	}
	logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	h.flash(c, "Congratulations, you are now a registered user!")
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) renderRegister(c *gin.Context, form registerForm, errs map[string]string) {
	form.Password, form.Password2 = "", ""
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": form, "Errors": errs})
}
