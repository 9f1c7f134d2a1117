package handler

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	csrf "github.com/utrack/gin-csrf"
	"go.uber.org/zap"

	"github.com/d60-Lab/linkboard/internal/api/middleware"
	"github.com/d60-Lab/linkboard/internal/apperror"
	"github.com/d60-Lab/linkboard/internal/auth"
	"github.com/d60-Lab/linkboard/internal/service"
	"github.com/d60-Lab/linkboard/pkg/logger"
	"github.com/d60-Lab/linkboard/pkg/monitor"
	"github.com/d60-Lab/linkboard/pkg/response"
)

// siteLaunch 页脚 "已上线 N 天"
var siteLaunch = time.Date(2018, 3, 28, 0, 0, 0, 0, time.UTC)

type Handler struct {
	userService    service.UserService
	postService    service.PostService
	commentService service.CommentService
	relService     service.RelationshipService
	tokens         *auth.RememberTokens
}

func NewHandler(
	userService service.UserService,
	postService service.PostService,
	commentService service.CommentService,
	relService service.RelationshipService,
	tokens *auth.RememberTokens,
) *Handler {
	return &Handler{
		userService:    userService,
		postService:    postService,
		commentService: commentService,
		relService:     relService,
		tokens:         tokens,
	}
}

// TemplateFuncs 模板函数
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04") },
		"formatDate": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("2006-01-02")
		},
	}
}

// render 注入当前用户、flash 消息等公共数据
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	session := sessions.Default(c)
	flashes := session.Flashes()
	if len(flashes) > 0 {
		_ = session.Save()
	}
	data["Flashes"] = flashes
	data["CSRFToken"] = csrf.GetToken(c)
	data["CurrentUser"] = middleware.CurrentUser(c)
	data["Days"] = int(time.Since(siteLaunch).Hours() / 24)
	c.HTML(status, name, data)
}

func (h *Handler) flash(c *gin.Context, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg)
	if err := session.Save(); err != nil {
		logger.Warn("save flash failed", zap.Error(err))
	}
}

func (h *Handler) notFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404.html", gin.H{"Title": "Not Found"})
}

// NoRoute 未匹配路由
func (h *Handler) NoRoute(c *gin.Context) { h.notFound(c) }

// CSRFFailed 缺少或伪造 CSRF token 的写请求
func (h *Handler) CSRFFailed(c *gin.Context) {
	logger.Warn("csrf token mismatch",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", middleware.GetRequestID(c)),
	)
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		response.BadRequest(c, "The CSRF token is missing or invalid.")
		c.Abort()
		return
	}
	h.render(c, http.StatusBadRequest, "400.html", gin.H{
		"Title":   "Bad Request",
		"Message": "The CSRF token is missing or invalid.",
	})
	c.Abort()
}

func (h *Handler) serverError(c *gin.Context, err error) {
	logger.Error("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	_ = c.Error(err)
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	} else {
		monitor.CaptureError(err)
	}
	h.render(c, http.StatusInternalServerError, "500.html", gin.H{"Title": "Error"})
}

// fail 找不到资源渲染 404，其余按 500 处理
func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, apperror.ErrNotFound) {
		h.notFound(c)
		return
	}
	h.serverError(c, err)
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// localPath 只接受站内相对路径，防止开放重定向
func localPath(raw string) (string, bool) {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return u.RequestURI(), true
}

// back 跳回 Referer（仅同站），否则跳到 fallback
func (h *Handler) back(c *gin.Context, fallback string) {
	target := fallback
	if ref, err := url.Parse(c.Request.Referer()); err == nil && ref.Host == c.Request.Host && ref.Path != "" {
		target = ref.RequestURI()
	}
	c.Redirect(http.StatusFound, target)
}
