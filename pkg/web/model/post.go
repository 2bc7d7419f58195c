package model

import (
	"time"

	"mini-twitter/pkg/common/pagination"
	postmodel "mini-twitter/pkg/core/post/model"
)

type (
	PostReq struct {
		Content string `json:"content"`
	}

	PostIDReq struct {
		ID int64 `path:"id"`
	}

	// ListPostsReq page 从 0 开始；size 缺省或越界由 service 修正
	ListPostsReq struct {
		Page int `query:"page" default:"0"`
		Size int `query:"size"`
	}

	PostRes struct {
		ID         int64      `json:"id"`
		Content    string     `json:"content"`
		Author     string     `json:"author"`
		CreatedAt  time.Time  `json:"createdAt"`
		ModifiedAt *time.Time `json:"modifiedAt"`
	}

	PageRes[T any] struct {
		Content       []T   `json:"content"`
		TotalElements int64 `json:"totalElements"`
		TotalPages    int   `json:"totalPages"`
		Size          int   `json:"size"`
		Number        int   `json:"number"`
	}
)

func NewPostRes(p postmodel.Post) PostRes {
	return PostRes{
		ID:         p.ID,
		Content:    p.Content,
		Author:     p.Author,
		CreatedAt:  p.CreatedAt,
		ModifiedAt: p.ModifiedAt,
	}
}

func NewPostPageRes(p pagination.Page[postmodel.Post]) PageRes[PostRes] {
	mapped := pagination.Map(p, NewPostRes)
	return PageRes[PostRes]{
		Content:       mapped.Content,
		TotalElements: mapped.TotalElements,
		TotalPages:    mapped.TotalPages,
		Size:          mapped.Size,
		Number:        mapped.Number,
	}
}
