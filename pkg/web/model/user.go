package model

import (
	"time"

	"mini-twitter/pkg/core/auth/token"
	usermodel "mini-twitter/pkg/core/user/model"
)

// 请求/响应数据结构
type (
	SignUpReq struct {
		Email    string `json:"email" vd:"email($)"`
		Password string `json:"password" vd:"mblen($)>=8&&mblen($)<=20&&len($)<=72"`
		Nickname string `json:"nickname" vd:"mblen($)>=2&&mblen($)<=50"`
	}

	LoginReq struct {
		Email    string `json:"email" vd:"len($)>0"`
		Password string `json:"password" vd:"len($)>0"`
	}

	UserRes struct {
		ID        int64     `json:"id"`
		Email     string    `json:"email"`
		Nickname  string    `json:"nickname"`
		CreatedAt time.Time `json:"createdAt"`
	}

	TokenRes struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}
)

func NewUserRes(p usermodel.Profile) UserRes {
	return UserRes{
		ID:        p.ID,
		Email:     p.Email,
		Nickname:  p.Nickname,
		CreatedAt: p.CreatedAt,
	}
}

func NewTokenRes(t token.AccessToken) TokenRes {
	return TokenRes{AccessToken: t.Token, TokenType: t.Type}
}
