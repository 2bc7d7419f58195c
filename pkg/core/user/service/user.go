package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	pkgerrors "github.com/pkg/errors"

	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/core/auth/password"
	"mini-twitter/pkg/core/auth/token"
	"mini-twitter/pkg/core/user/model"
	"mini-twitter/pkg/core/user/repository/dao"
)

// TokenIssuer 登录成功后签发令牌，注销时吊销令牌
type TokenIssuer interface {
	Issue(email string) (token.AccessToken, error)
	Revoke(ctx context.Context, token string) error
}

type UserService struct {
	repo   dao.UserRepository
	hasher password.Hasher
	tokens TokenIssuer
}

func NewUserService(repo dao.UserRepository, hasher password.Hasher, tokens TokenIssuer) *UserService {
	return &UserService{repo: repo, hasher: hasher, tokens: tokens}
}

// SignUp 注册新用户
// 先查重给出友好的错误，真正的唯一性由存储层唯一索引保证（并发注册时插入会返回重复错误）
func (s *UserService) SignUp(ctx context.Context, email, plainPassword, nickname string) (model.Profile, error) {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return model.Profile{}, pkgerrors.Wrap(err, "check email")
	}
	if exists {
		return model.Profile{}, apperrors.ErrDuplicateEmail
	}

	hashed, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return model.Profile{}, pkgerrors.Wrap(err, "hash password")
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashed,
		Nickname:     nickname,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			hlog.CtxInfof(ctx, "signup lost uniqueness race for existing email")
			return model.Profile{}, apperrors.ErrDuplicateEmail
		}
		return model.Profile{}, pkgerrors.Wrap(err, "create user")
	}

	return user.Profile(), nil
}

// Login 校验邮箱与密码并签发访问令牌
func (s *UserService) Login(ctx context.Context, email, plainPassword string) (token.AccessToken, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrRecordNotFound):
		return token.AccessToken{}, apperrors.ErrUserNotFound
	case err != nil:
		return token.AccessToken{}, pkgerrors.Wrap(err, "find user")
	}

	if err := s.hasher.Compare(user.PasswordHash, plainPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return token.AccessToken{}, apperrors.ErrInvalidPassword
		}
		return token.AccessToken{}, pkgerrors.Wrap(err, "compare password")
	}

	access, err := s.tokens.Issue(user.Email)
	if err != nil {
		return token.AccessToken{}, pkgerrors.Wrap(err, "issue token")
	}
	return access, nil
}

// Logout 吊销当前请求携带的令牌
func (s *UserService) Logout(ctx context.Context, rawToken string) error {
	if err := s.tokens.Revoke(ctx, rawToken); err != nil {
		if _, ok := apperrors.AsCode(err); ok {
			return err
		}
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
