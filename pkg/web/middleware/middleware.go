package middleware

import (
	"context"
	"fmt"
	"regexp"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/hertz-contrib/cors"

	"car-catalog/pkg/common/config"
	"car-catalog/pkg/common/metrics"
)

// LoggerMiddleware 结构化的请求日志记录
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		latency := time.Since(start)

		hlog.CtxInfof(c, "| %3d | %13v | %15s | %-7s | %s | UA=%s",
			ctx.Response.StatusCode(),
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
			ctx.GetHeader("User-Agent"),
		)
		for _, e := range ctx.Errors {
			hlog.CtxErrorf(c, "request error path=%s: %v", ctx.Path(), e.Err)
		}
	}
}

// MetricsMiddleware 按路由模板统计，避免 id 造成标签爆炸
func MetricsMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordRequest(
			string(ctx.Method()),
			path,
			strconv.Itoa(ctx.Response.StatusCode()),
			time.Since(start),
		)
	}
}

/*
	启动时指定环境变量
	export APP_ENV=production
	go run ./cmd/web
*/

// RecoveryMiddleware 异常捕获，生产环境不返回堆栈
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())
				hlog.CtxErrorf(c, "[PANIC RECOVERED] %v\n%s", err, stack)

				if cfg.IsProd() {
					ctx.AbortWithStatusJSON(500, utils.H{
						"success": false,
						"message": "An unexpected error occurred.",
					})
					return
				}
				ctx.AbortWithStatusJSON(500, utils.H{
					"success": false,
					"message": fmt.Sprintf("%v", err),
					"stack":   strings.Split(stack, "\n"),
				})
			}
		}()
		ctx.Next(c)
	}
}

// CORSMiddleware 安全的跨域配置
func CORSMiddleware(corsConfig config.CORSConfig) app.HandlerFunc {
	return cors.New(
		cors.Config{
			AllowOrigins:     corsConfig.AllowOrigins,
			AllowMethods:     corsConfig.AllowMethods,
			AllowHeaders:     corsConfig.AllowHeaders,
			ExposeHeaders:    corsConfig.ExposeHeaders,
			AllowCredentials: corsConfig.AllowCredentials,
			MaxAge:           corsConfig.MaxAge,
			// 动态校验来源
			AllowOriginFunc: func(origin string) bool {
				for _, domain := range corsConfig.TrustedDomains {
					if strings.Contains(origin, domain) {
						return true
					}
				}
				return false
			},
		},
	)
}

// TimeoutMiddleware 给请求上下文挂上截止时间，下游的存储调用据此取消。
// 处理器同步执行，不在超时后与后续写响应竞争。
func TimeoutMiddleware(seconds int) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if seconds <= 0 {
			ctx.Next(c)
			return
		}
		timeoutCtx, cancel := context.WithTimeout(c, time.Duration(seconds)*time.Second)
		defer cancel()

		ctx.Next(timeoutCtx)

		if timeoutCtx.Err() == context.DeadlineExceeded {
			hlog.CtxWarnf(c, "request exceeded %ds path=%s", seconds, ctx.Path())
		}
	}
}

// RateLimitMiddleware 按客户端 IP 分桶的令牌桶限流，rate<=0 时不限流
func RateLimitMiddleware(rate int, interval time.Duration) app.HandlerFunc {
	if rate <= 0 || interval <= 0 {
		return func(c context.Context, ctx *app.RequestContext) { ctx.Next(c) }
	}
	limiter := NewClientLimiter(rate, interval)

	return func(c context.Context, ctx *app.RequestContext) {
		if !limiter.Allow(ctx.ClientIP()) {
			hlog.CtxInfof(c, "[RATE LIMIT] ip=%s path=%s", ctx.ClientIP(), ctx.Path())
			ctx.AbortWithStatusJSON(429, utils.H{
				"success": false,
				"message": "Too many requests.",
			})
			return
		}
		ctx.Next(c)
	}
}

// maxIdleClients 桶数量超过该值时清理已回满的桶
const maxIdleClients = 10000

// ClientLimiter 每个客户端一个令牌桶，一个客户端用尽不影响其他客户端
type ClientLimiter struct {
	mu       sync.Mutex
	rate     int
	interval time.Duration
	buckets  map[string]*TokenBucket
	now      func() time.Time
}

func NewClientLimiter(rate int, interval time.Duration) *ClientLimiter {
	return &ClientLimiter{
		rate:     rate,
		interval: interval,
		buckets:  make(map[string]*TokenBucket),
		now:      time.Now,
	}
}

func (l *ClientLimiter) Allow(key string) bool {
	l.mu.Lock()
	tb, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= maxIdleClients {
			l.sweepLocked()
		}
		tb = NewTokenBucket(l.rate, l.interval)
		tb.now = l.now
		tb.last = l.now()
		l.buckets[key] = tb
	}
	l.mu.Unlock()
	return tb.Allow()
}

// sweepLocked 回满的桶与新建的桶等价，可以直接丢弃
func (l *ClientLimiter) sweepLocked() {
	now := l.now()
	for key, tb := range l.buckets {
		if tb.full(now) {
			delete(l.buckets, key)
		}
	}
}

// TokenBucket 按需补充令牌，不依赖后台 goroutine
type TokenBucket struct {
	mu       sync.Mutex
	capacity int
	tokens   int
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewTokenBucket 初始即装满，每 interval 补充一个令牌
func NewTokenBucket(rate int, interval time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity: rate,
		tokens:   rate,
		interval: interval,
		last:     time.Now(),
		now:      time.Now,
	}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked(tb.now())
	if tb.tokens == 0 {
		return false
	}
	tb.tokens--
	return true
}

func (tb *TokenBucket) full(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refillLocked(now)
	return tb.tokens == tb.capacity
}

func (tb *TokenBucket) refillLocked(now time.Time) {
	if refill := int(now.Sub(tb.last) / tb.interval); refill > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+refill)
		tb.last = tb.last.Add(time.Duration(refill) * tb.interval)
	}
}

// SecurityCheckMiddleware 全局安全校验中间件
func SecurityCheckMiddleware(sec config.SecurityConfig) app.HandlerFunc {
	// 预编译恶意字符正则
	xssRegex := regexp.MustCompile(`(?i)<script.*?>|</script>|alert\(|onerror=`)

	allowed := make(map[string]bool, len(sec.AllowedMethods))
	for _, m := range sec.AllowedMethods {
		allowed[strings.ToUpper(m)] = true
	}

	return func(c context.Context, ctx *app.RequestContext) {
		// 防护机制1：检查User-Agent
		if len(ctx.GetHeader("User-Agent")) == 0 {
			securityResponse(c, ctx, 400, "Missing required header: User-Agent.")
			return
		}

		// 防护机制2：请求体大小限制
		if sec.MaxBodySize > 0 && int64(ctx.Request.Header.ContentLength()) > sec.MaxBodySize {
			securityResponse(c, ctx, 413, "Request body exceeds max size.")
			return
		}

		// 防护机制3：查询参数恶意字符检查
		if hasMaliciousQuery(ctx, xssRegex) {
			securityResponse(c, ctx, 422, "Request contains invalid characters.")
			return
		}

		// 防护机制4：检查HTTP方法
		if len(allowed) > 0 && !allowed[string(ctx.Method())] {
			securityResponse(c, ctx, 405, "Method not allowed.")
			return
		}

		ctx.Next(c)
	}
}

func hasMaliciousQuery(ctx *app.RequestContext, xss *regexp.Regexp) bool {
	found := false
	ctx.QueryArgs().VisitAll(func(key, value []byte) {
		if !found && (xss.Match(key) || xss.Match(value)) {
			found = true
		}
	})
	return found
}

// 安全响应统一处理
func securityResponse(c context.Context, ctx *app.RequestContext, status int, msg string) {
	hlog.CtxWarnf(c, "SecurityAlert[status=%d] path=%s: %s", status, ctx.Path(), msg)
	ctx.AbortWithStatusJSON(status, utils.H{
		"success": false,
		"message": msg,
	})
}
