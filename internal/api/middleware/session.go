package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/linkboard/internal/apperror"
	"github.com/d60-Lab/linkboard/internal/auth"
	"github.com/d60-Lab/linkboard/internal/model"
	"github.com/d60-Lab/linkboard/internal/service"
	"github.com/d60-Lab/linkboard/pkg/logger"
)

const (
	SessionName        = "linkboard_session"
	SessionUserKey     = "user_id"
	RememberCookieName = "remember_token"

	currentUserKey = "current_user"
)

// LoadUser 从 session（或"记住我"cookie）恢复当前用户，并刷新 last_seen
func LoadUser(users service.UserService, tokens *auth.RememberTokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		session := sessions.Default(c)

		id, _ := session.Get(SessionUserKey).(uint)
		if id == 0 && tokens != nil {
			if raw, err := c.Cookie(RememberCookieName); err == nil && raw != "" {
				if uid, err := tokens.Parse(raw); err == nil {
					id = uid
					session.Set(SessionUserKey, id)
					_ = session.Save()
				} else {
					ClearRememberCookie(c)
				}
			}
		}
		if id == 0 {
			c.Next()
			return
		}

		user, err := users.GetByID(ctx, id)
		if err != nil {
			if !errors.Is(err, apperror.ErrNotFound) {
				logger.Error("load session user failed", zap.Uint("user_id", id), zap.Error(err))
			}
			session.Delete(SessionUserKey)
			_ = session.Save()
			ClearRememberCookie(c)
			c.Next()
			return
		}
		if err := users.Touch(ctx, user.ID); err != nil {
			logger.Warn("touch last_seen failed", zap.Uint("user_id", user.ID), zap.Error(err))
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser 未登录时返回 nil
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(currentUserKey); ok {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}
	return nil
}

// RequireLogin 页面请求跳转到 /login?next=...，API 请求返回 401
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "login required"})
			return
		}
		session := sessions.Default(c)
		session.AddFlash("Please log in to access this page.")
		_ = session.Save()
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// SetRememberCookie 写入长期有效的 JWT cookie
func SetRememberCookie(c *gin.Context, token string, tokens *auth.RememberTokens) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RememberCookieName, token, int(tokens.TTL().Seconds()), "/", "", c.Request.TLS != nil, true)
}

func ClearRememberCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RememberCookieName, "", -1, "/", "", c.Request.TLS != nil, true)
}
