// pkg/common/errors/codes.go

/*
  - 使用实例
    // service 层直接返回哨兵错误，可以继续用 %w 包装:
    return fmt.Errorf("%w: id=%d", errors.ErrNotFoundPost, id)

    // 边界层统一解析:
    if code, ok := errors.AsCode(err); ok {
    // code.Status / code.Code / code.Message
    }
*/
package errors

import (
	"errors"
	"net/http"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
)

// ErrorCode 业务错误：稳定的错误码 + HTTP 状态 + 对外消息
type ErrorCode struct {
	Code    string
	Status  int
	Message string
}

func (e *ErrorCode) Error() string {
	return e.Code + ": " + e.Message
}

// 认证 (A)
var (
	ErrInvalidToken     = &ErrorCode{"A001", http.StatusUnauthorized, "invalid token"}
	ErrExpiredToken     = &ErrorCode{"A002", http.StatusUnauthorized, "token has expired"}
	ErrUnsupportedToken = &ErrorCode{"A003", http.StatusUnauthorized, "unsupported token format"}
	ErrEmptyToken       = &ErrorCode{"A004", http.StatusUnauthorized, "token is empty"}
	ErrUnauthorized     = &ErrorCode{"A005", http.StatusUnauthorized, "authentication required"}
)

// 用户 (U)
var (
	ErrDuplicateEmail  = &ErrorCode{"U001", http.StatusConflict, "email is already in use"}
	ErrUserNotFound    = &ErrorCode{"U002", http.StatusNotFound, "user not found"}
	ErrInvalidPassword = &ErrorCode{"U003", http.StatusUnauthorized, "password does not match"}
)

// 帖子 (P)
var (
	ErrNotFoundPost       = &ErrorCode{"P001", http.StatusNotFound, "post not found"}
	ErrInvalidPostContent = &ErrorCode{"P002", http.StatusBadRequest, "post content must be between 1 and 280 characters"}
)

// 通用 (C)
var (
	ErrInvalidInput       = &ErrorCode{"C001", http.StatusBadRequest, "invalid request parameters"}
	ErrTooManyRequests    = &ErrorCode{"C002", http.StatusTooManyRequests, "too many requests"}
	ErrServiceUnavailable = &ErrorCode{"C003", http.StatusServiceUnavailable, "service unavailable"}
	ErrMethodNotAllowed   = &ErrorCode{"C004", http.StatusMethodNotAllowed, "method not allowed"}
	ErrPayloadTooLarge    = &ErrorCode{"C005", http.StatusRequestEntityTooLarge, "request body exceeds max size"}
	ErrMaliciousInput     = &ErrorCode{"C006", http.StatusUnprocessableEntity, "request contains invalid characters"}
	ErrMissingUserAgent   = &ErrorCode{"C007", http.StatusBadRequest, "missing required header: User-Agent"}
)

// ErrInternal 非业务错误统一对外展示，不泄露内部细节
var ErrInternal = &ErrorCode{"500", http.StatusInternalServerError, "internal server error"}

// AsCode 从错误链中取出业务错误码
func AsCode(err error) (*ErrorCode, bool) {
	var code *ErrorCode
	if errors.As(err, &code) {
		return code, true
	}
	return nil, false
}

// Wrap 包装成 Hertz 错误类型：业务错误为 Public，其他一律 Private
func Wrap(err error) *hzte.Error {
	if _, ok := AsCode(err); ok {
		return hzte.New(err, hzte.ErrorTypePublic, nil)
	}
	return hzte.New(err, hzte.ErrorTypePrivate, nil)
}
