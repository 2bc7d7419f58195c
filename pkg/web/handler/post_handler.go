package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/common/pagination"
	postmodel "mini-twitter/pkg/core/post/model"
	"mini-twitter/pkg/web/middleware"
	"mini-twitter/pkg/web/model"
)

type PostService interface {
	List(ctx context.Context, page, size int) (pagination.Page[postmodel.Post], error)
	Get(ctx context.Context, id int64) (postmodel.Post, error)
	Create(ctx context.Context, content, author string) (postmodel.Post, error)
	Update(ctx context.Context, id int64, content string) (postmodel.Post, error)
	Delete(ctx context.Context, id int64) error
}

type PostHandler struct {
	posts PostService
}

func NewPostHandler(posts PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

func (h *PostHandler) List(ctx context.Context, c *app.RequestContext) {
	var req model.ListPostsReq
	if err := c.BindAndValidate(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}

	page, err := h.posts.List(ctx, req.Page, req.Size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(model.NewPostPageRes(page)))
}

func (h *PostHandler) Get(ctx context.Context, c *app.RequestContext) {
	id, ok := bindPostID(c)
	if !ok {
		return
	}

	post, err := h.posts.Get(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(model.NewPostRes(post)))
}

// Create 作者取自当前登录用户的昵称
func (h *PostHandler) Create(ctx context.Context, c *app.RequestContext) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, apperrors.ErrUnauthorized)
		return
	}

	var req model.PostReq
	if err := c.BindAndValidate(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}

	post, err := h.posts.Create(ctx, req.Content, user.Nickname)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.Success(model.NewPostRes(post)))
}

func (h *PostHandler) Update(ctx context.Context, c *app.RequestContext) {
	id, ok := bindPostID(c)
	if !ok {
		return
	}

	var req model.PostReq
	if err := c.BindAndValidate(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}

	post, err := h.posts.Update(ctx, id, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(model.NewPostRes(post)))
}

func (h *PostHandler) Delete(ctx context.Context, c *app.RequestContext) {
	id, ok := bindPostID(c)
	if !ok {
		return
	}

	if err := h.posts.Delete(ctx, id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(nil))
}

func bindPostID(c *app.RequestContext) (int64, bool) {
	var req model.PostIDReq
	if err := c.BindPath(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return 0, false
	}
	return req.ID, true
}
