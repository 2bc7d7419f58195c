package middleware

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/core/user/model"
)

const (
	bearerScheme   = "Bearer"
	currentUserKey = "currentUser"
)

// TokenValidator 校验令牌并返回对应的用户
type TokenValidator interface {
	Validate(ctx context.Context, token string) (model.User, error)
}

// PublicRoute 无需认证即可访问的路由；Prefix 为 true 时同时匹配其子路径
type PublicRoute struct {
	Method string
	Path   string
	Prefix bool
}

// DefaultPublicRoutes 注册、登录、帖子只读接口与健康检查
var DefaultPublicRoutes = []PublicRoute{
	{Method: "POST", Path: "/api/auth/signup"},
	{Method: "POST", Path: "/api/auth/login"},
	{Method: "GET", Path: "/api/posts", Prefix: true},
	{Method: "GET", Path: "/health"},
}

func (r PublicRoute) match(method, path string) bool {
	if r.Method != method {
		return false
	}
	if path == r.Path {
		return true
	}
	return r.Prefix && strings.HasPrefix(path, r.Path+"/")
}

// Authenticate 解析 Bearer 令牌并把用户写入请求上下文
// 公开路由直接放行；未携带令牌的请求以匿名身份继续，由 RequireAuth 决定是否拒绝
func Authenticate(validator TokenValidator, public []PublicRoute) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		method, path := string(ctx.Method()), string(ctx.Path())
		for _, r := range public {
			if r.match(method, path) {
				ctx.Next(c)
				return
			}
		}

		raw, ok := BearerToken(ctx)
		if !ok {
			ctx.Next(c)
			return
		}

		user, err := validator.Validate(c, raw)
		if err != nil {
			if code, isCode := apperrors.AsCode(err); isCode {
				hlog.CtxInfof(c, "authentication failed req=%s code=%s path=%s", RequestID(ctx), code.Code, path)
			}
			abortWithError(ctx, err)
			return
		}

		ctx.Set(currentUserKey, user)
		ctx.Next(c)
	}
}

// RequireAuth 拒绝匿名请求
func RequireAuth() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if _, ok := CurrentUser(ctx); !ok {
			abortWithError(ctx, apperrors.ErrUnauthorized)
			return
		}
		ctx.Next(c)
	}
}

// CurrentUser 取出已认证的用户
func CurrentUser(ctx *app.RequestContext) (model.User, bool) {
	v, ok := ctx.Get(currentUserKey)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}

// BearerToken 读取 Authorization 头中的令牌，未使用 Bearer 方案时返回 false；方案名不区分大小写
func BearerToken(ctx *app.RequestContext) (string, bool) {
	header := string(ctx.GetHeader("Authorization"))
	if len(header) <= len(bearerScheme) || header[len(bearerScheme)] != ' ' ||
		!strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return "", false
	}
	return strings.TrimSpace(header[len(bearerScheme):]), true
}
