package router

import (
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"car-catalog/pkg/common/config"
	"car-catalog/pkg/core/blob"
	carservice "car-catalog/pkg/core/car/service"
	userservice "car-catalog/pkg/core/user/service"
	"car-catalog/pkg/web/handler"
	"car-catalog/pkg/web/middleware"
)

// Services 路由依赖的业务服务
type Services struct {
	Users    *userservice.UserService
	Cars     *carservice.CarService
	Uploader *blob.Uploader
	Probes   []handler.Probe
}

// RegisterAPIs 注册所有路由
func RegisterAPIs(h *server.Hertz, cfg *config.Config, svc Services) error {
	sessions, err := middleware.NewSessionAuthority(cfg.Middleware.JWT, svc.Users)
	if err != nil {
		return fmt.Errorf("init session authority: %w", err)
	}
	auth := sessions.MiddlewareFunc()

	healthHandler := handler.NewHealthCheckHandler(cfg.Store.CallTimeout, svc.Probes...)
	userHandler := handler.NewUserHandler(svc.Users)
	carHandler := handler.NewCarHandler(svc.Cars)
	uploadHandler := handler.NewUploadHandler(svc.Uploader)

	// 注册全局中间件（按执行顺序）
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(),
		middleware.SecurityCheckMiddleware(cfg.Middleware.Security),
		middleware.TimeoutMiddleware(cfg.Middleware.Timeout.RequestTimeout),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
		middleware.RateLimitMiddleware(
			cfg.Middleware.RateLimit.Rate,
			cfg.Middleware.RateLimit.Interval,
		),
	)

	// 基础接口
	h.GET("/health", healthHandler.AdvancedHealthCheck)
	h.GET("/metrics", handler.Metrics)

	// 会话
	h.POST("/sign-up", userHandler.Register)
	h.POST("/sign-in", sessions.LoginHandler)
	h.POST("/sign-out", sessions.LogoutHandler)
	h.GET("/refresh-token", sessions.RefreshHandler)

	// 需要身份认证的接口
	protected := []struct {
		method, path string
		handle       app.HandlerFunc
	}{
		{"GET", "/me", userHandler.Me},
		{"GET", "/cars", carHandler.List},
		{"POST", "/cars", carHandler.Create},
		{"GET", "/cars/:id", carHandler.Get},
		{"DELETE", "/cars/:id", carHandler.Delete},
		{"POST", "/upload", uploadHandler.Upload},

		// 旧路径
		{"GET", "/list-cars", carHandler.List},
		{"GET", "/get-cars", carHandler.List},
		{"POST", "/add-car", carHandler.Create},
		{"DELETE", "/delete-car/:id", carHandler.Delete},
	}
	for _, r := range protected {
		h.Handle(r.method, r.path, auth, r.handle)
	}

	// 页面路由守卫
	guest := middleware.PageGate(sessions, false)
	member := middleware.PageGate(sessions, true)
	h.GET("/signin", guest, handler.Page("Sign in", "POST your identifier and password to /sign-in."))
	h.GET("/signup", guest, handler.Page("Sign up", "POST your name, email and password to /sign-up."))
	dashboard := handler.Page("Dashboard", "Your cars are listed at /cars.")
	h.GET("/dashboard", member, dashboard)
	h.GET("/dashboard/*rest", member, dashboard)

	return nil
}
