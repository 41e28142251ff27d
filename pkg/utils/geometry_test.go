package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2Normalized(t *testing.T) {
	tests := []struct {
		name string
		in   Vec2
		want Vec2
	}{
		{"水平向量", Vec2{X: 10}, Vec2{X: 1}},
		{"3-4-5 三角形", Vec2{X: 3, Y: 4}, Vec2{X: 0.6, Y: 0.8}},
		{"零向量保持为零", Vec2{}, Vec2{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalized()
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestVec2Distance(t *testing.T) {
	a := Vec2{X: 1, Y: 1}
	b := Vec2{X: 4, Y: 5}

	assert.InDelta(t, 5.0, a.Distance(b), 1e-9)
	assert.InDelta(t, a.Distance(b), b.Distance(a), 1e-9)
	assert.InDelta(t, math.Sqrt(2), a.Length(), 1e-9)
}

func TestRectFromCenter(t *testing.T) {
	r := RectFromCenter(Vec2{X: 10, Y: 20}, Size{Width: 4, Height: 6})

	assert.Equal(t, Vec2{X: 8, Y: 17}, r.Min)
	assert.Equal(t, Vec2{X: 12, Y: 23}, r.Max)
	assert.Equal(t, 4.0, r.Width())
	assert.Equal(t, 6.0, r.Height())
	assert.Equal(t, Vec2{X: 10, Y: 20}, r.Center())
}

func TestRectContainsAndIntersects(t *testing.T) {
	r := RectFromCenter(Vec2{}, Size{Width: 10, Height: 10})

	assert.True(t, r.Contains(Vec2{X: 5, Y: 5}), "边界点应视为包含")
	assert.False(t, r.Contains(Vec2{X: 5.1, Y: 0}))

	touching := RectFromCenter(Vec2{X: 10}, Size{Width: 10, Height: 10})
	assert.False(t, r.Intersects(touching), "仅接触边界不算相交")

	overlapping := RectFromCenter(Vec2{X: 9}, Size{Width: 10, Height: 10})
	assert.True(t, r.Intersects(overlapping))
	assert.True(t, overlapping.Intersects(r))
}

func TestRectIsEmpty(t *testing.T) {
	assert.True(t, Rect{Min: Vec2{X: 1}, Max: Vec2{X: 0, Y: 5}}.IsEmpty())
	assert.False(t, RectFromCenter(Vec2{}, Size{Width: 1, Height: 1}).IsEmpty())
}
