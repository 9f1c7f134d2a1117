package api

import (
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	csrf "github.com/utrack/gin-csrf"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/linkboard/config"
	_ "github.com/d60-Lab/linkboard/docs"
	"github.com/d60-Lab/linkboard/internal/api/handler"
	"github.com/d60-Lab/linkboard/internal/api/middleware"
	"github.com/d60-Lab/linkboard/internal/auth"
	"github.com/d60-Lab/linkboard/internal/service"
	"github.com/d60-Lab/linkboard/web"
)

// Deps 组装路由需要的依赖
type Deps struct {
	Config      *config.Config
	Handler     *handler.Handler
	Users       service.UserService
	Tokens      *auth.RememberTokens
	RateLimiter *middleware.IPRateLimiter
	// Registry 为空时不挂 /metrics
	Registry      *prometheus.Registry
	SentryEnabled bool
}

// SetupRouter 注册中间件和全部路由
func SetupRouter(d Deps) (*gin.Engine, error) {
	cfg := d.Config
	handler.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	if d.SentryEnabled {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true, Timeout: 2 * time.Second}))
	}
	r.Use(middleware.RequestID())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.Logger())
	if d.Registry != nil {
		r.Use(middleware.NewMetrics(d.Registry).Handler())
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	tmpl, err := template.New("").Funcs(handler.TemplateFuncs()).ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("static files: %w", err)
	}
	r.StaticFS("/static", http.FS(static))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	store := cookie.NewStore(auth.DeriveKey(cfg.Server.SessionSecret, auth.PurposeSession))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Server.Mode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})

	h := d.Handler
	// 所有非 GET/HEAD/OPTIONS 请求（含 JSON API）都要带 _csrf 表单字段或 X-CSRF-TOKEN 头
	sessionChain := []gin.HandlerFunc{
		sessions.Sessions(middleware.SessionName, store),
		middleware.LoadUser(d.Users, d.Tokens),
		csrf.Middleware(csrf.Options{
			Secret:    hex.EncodeToString(auth.DeriveKey(cfg.Server.SessionSecret, auth.PurposeCSRF)),
			ErrorFunc: h.CSRFFailed,
		}),
	}
	site := r.Group("/")
	site.Use(sessionChain...)
	{
		limited := site.Group("")
		if d.RateLimiter != nil {
			limited.Use(middleware.RateLimit(d.RateLimiter))
		}
		limited.GET("/login", h.ShowLogin)
		limited.POST("/login", h.Login)
		limited.GET("/register", h.ShowRegister)
		limited.POST("/register", h.Register)

		site.GET("/logout", h.Logout)
		site.GET("/", h.Index)
		site.POST("/", h.Index)
		site.GET("/index", h.Index)
		site.POST("/index", h.Index)

		private := site.Group("", middleware.RequireLogin())
		private.GET("/post/:id", h.ShowPost)
		private.POST("/post/:id", h.AddComment)
		private.GET("/submit", h.ShowSubmit)
		private.POST("/submit", h.Submit)
		private.GET("/block/:username", h.Block)
		private.GET("/unblock/:username", h.Unblock)
		private.GET("/profile/:username", h.Profile)

		v1 := site.Group("/api/v1", middleware.RequireLogin())
		v1.GET("/posts", h.ListPostsAPI)
		v1.GET("/posts/:id/comments", h.ListCommentsAPI)
		v1.POST("/relations/block", h.BlockUser)
		v1.POST("/relations/unblock", h.UnblockUser)
	}

	r.NoRoute(append(sessionChain, h.NoRoute)...)
	return r, nil
}
