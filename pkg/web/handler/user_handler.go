package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/core/auth/token"
	usermodel "mini-twitter/pkg/core/user/model"
	"mini-twitter/pkg/web/middleware"
	"mini-twitter/pkg/web/model"
)

// AuthService 注册、登录与注销
type AuthService interface {
	SignUp(ctx context.Context, email, password, nickname string) (usermodel.Profile, error)
	Login(ctx context.Context, email, password string) (token.AccessToken, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	users AuthService
}

func NewAuthHandler(users AuthService) *AuthHandler {
	return &AuthHandler{users: users}
}

func (h *AuthHandler) SignUp(ctx context.Context, c *app.RequestContext) {
	var req model.SignUpReq
	if err := c.BindAndValidate(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}

	profile, err := h.users.SignUp(ctx, req.Email, req.Password, req.Nickname)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.Success(model.NewUserRes(profile)))
}

func (h *AuthHandler) Login(ctx context.Context, c *app.RequestContext) {
	var req model.LoginReq
	if err := c.BindAndValidate(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}

	access, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewTokenRes(access)))
}

// Logout 吊销当前令牌，路由上需配合 RequireAuth
func (h *AuthHandler) Logout(ctx context.Context, c *app.RequestContext) {
	raw, _ := middleware.BearerToken(c)
	if err := h.users.Logout(ctx, raw); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(nil))
}

// fail 记录错误并中断，响应由 ErrorHandlerMiddleware 输出
func fail(c *app.RequestContext, err error) {
	_ = c.Error(apperrors.Wrap(err))
	c.Abort()
}
