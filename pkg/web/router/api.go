package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"mini-twitter/pkg/common/config"
	"mini-twitter/pkg/web/handler"
	"mini-twitter/pkg/web/middleware"
)

// Dependencies 路由需要的业务实现，由 main 组装
type Dependencies struct {
	Users   handler.AuthService
	Posts   handler.PostService
	Tokens  middleware.TokenValidator
	Limiter middleware.Limiter // nil 表示关闭限流
	Health  []handler.Checker
}

// RegisterAPIs 注册所有API路由
func RegisterAPIs(h *server.Hertz, cfg *config.Config, deps Dependencies) {
	// 初始化Handler实例
	healthHandler := handler.NewHealthCheckHandler(deps.Health...)
	authHandler := handler.NewAuthHandler(deps.Users)
	postHandler := handler.NewPostHandler(deps.Posts)

	// 注册全局中间件（按执行顺序）
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.ErrorHandlerMiddleware(),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
		middleware.SecurityCheckMiddleware(cfg.Middleware.Security),
	)
	if deps.Limiter != nil {
		h.Use(middleware.RateLimitMiddleware(deps.Limiter))
	}
	h.Use(
		middleware.TimeoutMiddleware(cfg.Middleware.Timeout.RequestTimeout),
		middleware.Authenticate(deps.Tokens, middleware.DefaultPublicRoutes),
	)

	// 基础接口组
	h.GET("/health", healthHandler.AdvancedHealthCheck)

	// 业务接口组
	apiGroup := h.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.SignUp)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", middleware.RequireAuth(), authHandler.Logout)
		}

		apiGroup.GET("/posts", postHandler.List)
		apiGroup.GET("/posts/:id", postHandler.Get)

		// 需要身份认证的接口
		protected := apiGroup.Group("/posts", middleware.RequireAuth())
		{
			protected.POST("", postHandler.Create)
			protected.PUT("/:id", postHandler.Update)
			protected.DELETE("/:id", postHandler.Delete)
		}
	}
}
