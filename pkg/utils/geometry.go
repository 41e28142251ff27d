// Package utils 提供模拟核心使用的几何工具
//
// 坐标约定：
//   - 世界坐标原点位于地图中心，X 向右、Y 向上
//   - 实体位置 (Vec2) 表示其占地矩形的中心点
//   - 占地尺寸 (Size) 为完整宽高，不是半宽高
package utils

import "math"

// Vec2 二维向量 / 世界坐标点
type Vec2 struct {
	X float64
	Y float64
}

// Add 向量加法
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub 向量减法
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale 标量乘法
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Length 向量长度
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalized 返回单位向量；零向量返回零向量
func (v Vec2) Normalized() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Distance 两点间距离
func (v Vec2) Distance(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Size 占地尺寸（宽、高）
type Size struct {
	Width  float64
	Height float64
}

// Rect 轴对齐矩形，Min 为左下角，Max 为右上角
type Rect struct {
	Min Vec2
	Max Vec2
}

// RectFromCenter 根据中心点和尺寸构造矩形
func RectFromCenter(center Vec2, size Size) Rect {
	hw, hh := size.Width/2, size.Height/2
	return Rect{
		Min: Vec2{X: center.X - hw, Y: center.Y - hh},
		Max: Vec2{X: center.X + hw, Y: center.Y + hh},
	}
}

// Width 矩形宽度
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height 矩形高度
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center 矩形中心
func (r Rect) Center() Vec2 {
	return Vec2{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Contains 判断点是否落在矩形内（含边界）
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Intersects 判断两个矩形是否相交（仅接触边界不算相交）
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X && r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

// IsEmpty 宽或高非正的矩形视为空
func (r Rect) IsEmpty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}

// Translate 平移矩形
func (r Rect) Translate(d Vec2) Rect {
	return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)}
}
