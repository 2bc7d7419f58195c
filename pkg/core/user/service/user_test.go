package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/core/auth/password"
	"mini-twitter/pkg/core/auth/token"
	"mini-twitter/pkg/core/user/model"
	"mini-twitter/pkg/core/user/repository/dao/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newService(t *testing.T) (*UserService, *memory.UserRepository, *token.Service) {
	t.Helper()
	repo := memory.NewUserRepository()
	tokens, err := token.NewService(token.Options{Secret: testSecret, Lifetime: time.Hour}, repo)
	require.NoError(t, err)
	return NewUserService(repo, password.NewBcryptHasher(bcrypt.MinCost), tokens), repo, tokens
}

func TestSignUp_Success(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	profile, err := svc.SignUp(ctx, "alice@example.com", "password123", "alice")
	require.NoError(t, err)
	assert.NotZero(t, profile.ID)
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.Equal(t, "alice", profile.Nickname)

	stored, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice@example.com", "password123", "alice")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "alice@example.com", "otherpass1", "alice2")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
	assert.Equal(t, 1, repo.Count())
}

func TestSignUp_EmailIsCaseSensitive(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice@example.com", "password123", "alice")
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, "Alice@example.com", "password123", "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.Count())
}

// racingRepo 模拟查重通过后被并发注册抢先插入
type racingRepo struct {
	*memory.UserRepository
}

func (r racingRepo) ExistsByEmail(context.Context, string) (bool, error) {
	return false, nil
}

func TestSignUp_ConstraintViolationIsDuplicateEmail(t *testing.T) {
	base := memory.NewUserRepository()
	require.NoError(t, base.Create(context.Background(), &model.User{Email: "alice@example.com", Nickname: "a"}))

	tokens, err := token.NewService(token.Options{Secret: testSecret, Lifetime: time.Hour}, base)
	require.NoError(t, err)
	svc := NewUserService(racingRepo{base}, password.NewBcryptHasher(bcrypt.MinCost), tokens)

	_, err = svc.SignUp(context.Background(), "alice@example.com", "password123", "alice")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
	assert.Equal(t, 1, base.Count())
}

func TestLogin(t *testing.T) {
	svc, _, tokens := newService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice@example.com", "password123", "alice")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		access, err := svc.Login(ctx, "alice@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "Bearer", access.Type)

		u, err := tokens.Validate(ctx, access.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice@example.com", "wrong-password")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "bob@example.com", "password123")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

type failingRepo struct {
	*memory.UserRepository
}

func (failingRepo) FindByEmail(context.Context, string) (model.User, error) {
	return model.User{}, errors.New("db down")
}

func TestLogin_UnexpectedErrorIsNotDomainError(t *testing.T) {
	repo := failingRepo{memory.NewUserRepository()}
	tokens, err := token.NewService(token.Options{Secret: testSecret, Lifetime: time.Hour}, repo)
	require.NoError(t, err)
	svc := NewUserService(repo, password.NewBcryptHasher(bcrypt.MinCost), tokens)

	_, err = svc.Login(context.Background(), "alice@example.com", "password123")
	require.Error(t, err)
	_, isDomain := apperrors.AsCode(err)
	assert.False(t, isDomain)
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, _, tokens := newService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice@example.com", "password123", "alice")
	require.NoError(t, err)
	access, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, access.Token))

	_, err = tokens.Validate(ctx, access.Token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
