package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	hzte "github.com/cloudwego/hertz/pkg/common/errors"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/hertz-contrib/cors"

	"mini-twitter/pkg/common/config"
	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/web/model"
)

const (
	HeaderRequestID = "X-Request-ID"
	requestIDKey    = "requestID"
)

// RequestIDMiddleware 透传或生成请求 ID，并写回响应头
func RequestIDMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		id := string(ctx.GetHeader(HeaderRequestID))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		ctx.Set(requestIDKey, id)
		ctx.Header(HeaderRequestID, id)
		ctx.Next(c)
	}
}

// RequestID 当前请求的 ID，未经过 RequestIDMiddleware 时为空
func RequestID(ctx *app.RequestContext) string {
	return ctx.GetString(requestIDKey)
}

// LoggerMiddleware 结构化的请求日志记录
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c) // 放行到后续处理器
		latency := time.Since(start)

		hlog.CtxInfof(c, "| %3d | %13v | %15s | %-7s | %s | req=%s",
			ctx.Response.StatusCode(),
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
			RequestID(ctx),
		)
	}
}

/*
	启动时指定环境变量
	export APP_ENV=production
	go run main.go
*/

// RecoveryMiddleware 异常捕获，生产环境不返回堆栈
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())
				hlog.CtxErrorf(c, "[PANIC RECOVERED] req=%s %v\n%s", RequestID(ctx), err, stack)

				resp := model.Fail(apperrors.ErrInternal)
				if !cfg.IsProd() {
					resp.Data = map[string]interface{}{
						"error": fmt.Sprintf("%v", err),
						"stack": strings.Split(stack, "\n"),
					}
				}
				ctx.AbortWithStatusJSON(apperrors.ErrInternal.Status, resp)
			}
		}()
		ctx.Next(c)
	}
}

// ErrorHandlerMiddleware 把处理链中记录的最后一个错误渲染为统一信封
// 业务错误（Public）按错误码返回；其余错误记录完整堆栈后返回 500
func ErrorHandlerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		ctx.Next(c)

		last := ctx.Errors.Last()
		if last == nil {
			return
		}

		code := resolveError(c, ctx, last)
		ctx.AbortWithStatusJSON(code.Status, model.Fail(code))
	}
}

func resolveError(c context.Context, ctx *app.RequestContext, last *hzte.Error) *apperrors.ErrorCode {
	if last.IsType(hzte.ErrorTypePublic) {
		if code, ok := apperrors.AsCode(last.Err); ok {
			return code
		}
	}
	if errors.Is(last.Err, context.DeadlineExceeded) {
		hlog.CtxWarnf(c, "request deadline exceeded req=%s path=%s: %v", RequestID(ctx), ctx.Path(), last.Err)
		return apperrors.ErrServiceUnavailable
	}
	hlog.CtxErrorf(c, "unhandled error req=%s path=%s: %+v", RequestID(ctx), ctx.Path(), last.Err)
	return apperrors.ErrInternal
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
			// 动态校验来源：AllowOrigins 之外，主机名属于受信域名（含子域名）也放行
			AllowOriginFunc: func(origin string) bool {
				return isTrustedOrigin(origin, corsConfig.TrustedDomains)
			},
		},
	)
}

func isTrustedOrigin(origin string, domains []string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimPrefix(domain, "."))
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// TimeoutMiddleware 为后续处理链设置截止时间
// 超时由下游（GORM/Redis）返回 context.DeadlineExceeded，再由 ErrorHandlerMiddleware 渲染为 503
func TimeoutMiddleware(seconds int) app.HandlerFunc {
	if seconds <= 0 {
		return func(c context.Context, ctx *app.RequestContext) {
			ctx.Next(c)
		}
	}
	timeout := time.Duration(seconds) * time.Second

	return func(c context.Context, ctx *app.RequestContext) {
		timeoutCtx, cancel := context.WithTimeout(c, timeout)
		defer cancel()

		ctx.Next(timeoutCtx) // 关键：传入超时上下文

		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			hlog.CtxWarnf(c, "request timeout req=%s path=%s", RequestID(ctx), ctx.Path())
		}
	}
}

// SecurityCheckMiddleware 全局安全校验中间件
func SecurityCheckMiddleware(cfg config.SecurityConfig) app.HandlerFunc {
	// 预编译恶意字符正则
	xssRegex := regexp.MustCompile(`(?i)<script.*?>|<\/script>|alert\(|onerror=`)
	sqlInjectRegex := regexp.MustCompile(`(?i)\b(union|select|drop|delete|insert)\b`)

	allowedMethods := make(map[string]bool, len(cfg.AllowedMethods))
	for _, m := range cfg.AllowedMethods {
		allowedMethods[strings.ToUpper(m)] = true
	}

	return func(c context.Context, ctx *app.RequestContext) {
		// 防护机制1：检查User-Agent
		if cfg.RequireUserAgent && isInvalidUserAgent(ctx) {
			securityReject(c, ctx, apperrors.ErrMissingUserAgent)
			return
		}

		// 防护机制2：请求体大小限制
		if cfg.MaxBodySize > 0 && int64(ctx.Request.Header.ContentLength()) > cfg.MaxBodySize {
			securityReject(c, ctx, apperrors.ErrPayloadTooLarge)
			return
		}

		// 防护机制3：参数恶意字符检查
		if hasMaliciousContent(ctx, xssRegex, sqlInjectRegex) {
			securityReject(c, ctx, apperrors.ErrMaliciousInput)
			return
		}

		// 防护机制4：检查HTTP方法
		if !allowedMethods[string(ctx.Method())] {
			securityReject(c, ctx, apperrors.ErrMethodNotAllowed)
			return
		}

		ctx.Next(c)
	}
}

// 辅助方法：判断User-Agent合法性
func isInvalidUserAgent(ctx *app.RequestContext) bool {
	return len(strings.TrimSpace(string(ctx.GetHeader("User-Agent")))) == 0
}

func hasMaliciousContent(ctx *app.RequestContext, xss *regexp.Regexp, sql *regexp.Regexp) bool {
	found := false

	visitor := func(key, value []byte) {
		if found {
			return // 已经找到匹配，跳过后续检查
		}
		found = xss.Match(key) || xss.Match(value) || sql.Match(key) || sql.Match(value)
	}

	// 检查Query参数
	ctx.QueryArgs().VisitAll(visitor)
	if found {
		return true
	}

	// 检查Post表单参数
	ctx.PostArgs().VisitAll(visitor)
	return found
}

// securityReject 记录错误并中断，响应由 ErrorHandlerMiddleware 统一输出
func securityReject(c context.Context, ctx *app.RequestContext, code *apperrors.ErrorCode) {
	hlog.CtxWarnf(c, "SecurityAlert[code=%s] req=%s ip=%s: %s", code.Code, RequestID(ctx), ctx.ClientIP(), code.Message)
	abortWithError(ctx, code)
}

func abortWithError(ctx *app.RequestContext, err error) {
	_ = ctx.Error(apperrors.Wrap(err))
	ctx.Abort()
}
