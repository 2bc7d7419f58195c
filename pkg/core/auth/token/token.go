// Package token 签发与校验无状态的 Bearer 令牌（HMAC JWT）。
//
// 令牌状态：签发 → 有效 → 过期/无效 → 拒绝。服务端不保存会话，
// 唯一的服务端状态是可选的吊销列表（按 jti 记录，直到令牌自然过期）。
package token

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/core/user/model"
)

// TypeBearer 登录响应中固定的令牌类型
const TypeBearer = "Bearer"

var errUnexpectedAlgorithm = errors.New("unexpected signing algorithm")

// IdentityLoader 按令牌 subject（邮箱）重新加载用户
type IdentityLoader interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
}

type AccessToken struct {
	Token     string
	Type      string
	ExpiresAt time.Time
}

type Options struct {
	Secret        string
	Lifetime      time.Duration
	Issuer        string
	SigningMethod string // HS256 | HS384 | HS512
}

type Option func(*Service)

// WithClock 替换时间源
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDenylist 替换吊销列表实现，默认使用进程内实现
func WithDenylist(d Denylist) Option {
	return func(s *Service) { s.denylist = d }
}

type Service struct {
	key      []byte
	method   jwt.SigningMethod
	lifetime time.Duration
	issuer   string
	users    IdentityLoader
	denylist Denylist
	now      func() time.Time
}

func NewService(opts Options, users IdentityLoader, options ...Option) (*Service, error) {
	if opts.Secret == "" {
		return nil, errors.New("token: empty signing secret")
	}
	if opts.Lifetime <= 0 {
		return nil, errors.New("token: lifetime must be positive")
	}
	alg := opts.SigningMethod
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token: unsupported signing method %q", alg)
	}

	s := &Service{
		key:      []byte(opts.Secret),
		method:   method,
		lifetime: opts.Lifetime,
		issuer:   opts.Issuer,
		users:    users,
		now:      time.Now,
	}
	for _, o := range options {
		o(s)
	}
	if s.denylist == nil {
		s.denylist = NewMemoryDenylist()
	}
	return s, nil
}

// Issue 为已验证的身份签发令牌：sub=邮箱，iat=now，exp=now+lifetime
func (s *Service) Issue(email string) (AccessToken, error) {
	now := s.now()
	expiresAt := now.Add(s.lifetime)

	claims := jwt.RegisteredClaims{
		Subject:   email,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.key)
	if err != nil {
		return AccessToken{}, fmt.Errorf("sign token: %w", err)
	}
	return AccessToken{Token: signed, Type: TypeBearer, ExpiresAt: expiresAt}, nil
}

// Validate 校验签名与有效期，并把 subject 解析为仍然存在的用户
func (s *Service) Validate(ctx context.Context, token string) (model.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return model.User{}, err
	}

	revoked, err := s.denylist.Contains(ctx, claims.ID)
	if err != nil {
		return model.User{}, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return model.User{}, fmt.Errorf("%w: token revoked", apperrors.ErrInvalidToken)
	}

	user, err := s.users.FindByEmail(ctx, claims.Subject)
	switch {
	case errors.Is(err, apperrors.ErrRecordNotFound):
		return model.User{}, apperrors.ErrUserNotFound
	case err != nil:
		return model.User{}, fmt.Errorf("load token subject: %w", err)
	}
	return user, nil
}

// Revoke 把令牌的 jti 加入吊销列表，直到令牌过期
func (s *Service) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	return s.denylist.Add(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *Service) parse(token string) (*jwt.RegisteredClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.ErrEmptyToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, s.keyFunc, parserOpts...); err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) && s.expiredUnverified(token) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrExpiredToken, err)
		}
		return nil, classify(err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing sub or jti", apperrors.ErrInvalidToken)
	}
	return claims, nil
}

// expiredUnverified 签名不匹配时仍按 exp 判断是否过期，过期令牌一律报告 EXPIRED
func (s *Service) expiredUnverified(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !s.now().Before(claims.ExpiresAt.Time)
}

// keyFunc 只接受本服务签发时使用的算法
func (s *Service) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != s.method.Alg() {
		return nil, fmt.Errorf("%w: %s", errUnexpectedAlgorithm, t.Method.Alg())
	}
	return s.key, nil
}

// classify 已过期 → EXPIRED；算法不符或未知 → UNSUPPORTED；其余 → INVALID
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", apperrors.ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", apperrors.ErrUnsupportedToken, err)
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
}
