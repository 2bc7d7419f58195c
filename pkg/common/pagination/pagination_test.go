package pagination

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   Request
		want Request
	}{
		{Request{Page: 0, Size: 10}, Request{Page: 0, Size: 10}},
		{Request{Page: -3, Size: 10}, Request{Page: 0, Size: 10}},
		{Request{Page: 2, Size: 0}, Request{Page: 2, Size: 20}},
		{Request{Page: 1, Size: -5}, Request{Page: 1, Size: 20}},
		{Request{Page: 1, Size: 100000}, Request{Page: 1, Size: 50}},
		{Request{Page: math.MaxInt, Size: 10}, Request{Page: math.MaxInt / 10, Size: 10}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.in.Normalize(20, 50))
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2, 3, 4, 5}, 15, Request{Page: 1, Size: 10})
	assert.Equal(t, int64(15), p.TotalElements)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 10, p.Size)

	empty := NewPage[int](nil, 0, Request{Page: 0, Size: 10})
	assert.NotNil(t, empty.Content)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestMap_KeepsMetadata(t *testing.T) {
	p := NewPage([]int{1, 2}, 12, Request{Page: 0, Size: 2})
	got := Map(p, strconv.Itoa)

	assert.Equal(t, []string{"1", "2"}, got.Content)
	assert.Equal(t, p.TotalElements, got.TotalElements)
	assert.Equal(t, 6, got.TotalPages)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 30, Request{Page: 3, Size: 10}.Offset())

	huge := Request{Page: math.MaxInt/9, Size: 10}.Normalize(20, 50)
	assert.GreaterOrEqual(t, huge.Offset(), 0)
}
