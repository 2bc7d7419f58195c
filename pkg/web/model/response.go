package model

import (
	apperrors "mini-twitter/pkg/common/errors"
)

const (
	SuccessCode    = "200"
	SuccessMessage = "OK"
)

// Response 统一响应信封：失败时 data 为 null
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func Success(data interface{}) Response {
	return Response{Code: SuccessCode, Message: SuccessMessage, Data: data}
}

func Fail(code *apperrors.ErrorCode) Response {
	return Response{Code: code.Code, Message: code.Message}
}
