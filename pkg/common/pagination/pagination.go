// Package pagination 提供页码/页大小的归一化与分页结果结构。
package pagination

import "math"

// Request 页码从 0 开始
type Request struct {
	Page int
	Size int
}

// Normalize 修正非法入参：page<0 归零，size<=0 使用默认值，size 超过上限时截断
// page 过大时截断到 Offset 不溢出的最大值
func (r Request) Normalize(defaultSize, maxSize int) Request {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = defaultSize
	}
	if r.Size > maxSize {
		r.Size = maxSize
	}
	if r.Size > 0 && r.Page > math.MaxInt/r.Size {
		r.Page = math.MaxInt / r.Size
	}
	return r
}

func (r Request) Offset() int {
	return r.Page * r.Size
}

// Page 分页结果
type Page[T any] struct {
	Content       []T
	TotalElements int64
	TotalPages    int
	Size          int
	Number        int
}

// NewPage 根据总数计算总页数
func NewPage[T any](content []T, total int64, req Request) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          req.Size,
		Number:        req.Page,
	}
}

// Map 转换元素类型，分页元数据保持不变
func Map[T, R any](p Page[T], fn func(T) R) Page[R] {
	out := make([]R, 0, len(p.Content))
	for _, v := range p.Content {
		out = append(out, fn(v))
	}
	return Page[R]{
		Content:       out,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Size:          p.Size,
		Number:        p.Number,
	}
}
