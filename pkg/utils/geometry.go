package utils

import "math"

// 简单几何类型
//
// 行门（spawn portal）定位和出生点抖动使用世界坐标。
// 这里只保留波次规划需要的最小集合，渲染层有自己的坐标系统。

// Vec2 二维向量（世界坐标）
type Vec2 struct {
	X float64
	Y float64
}

// Sub 向量减法
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Add 向量加法
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Length 向量长度
func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalized 返回单位向量，零向量返回 (0, 0)
func (v Vec2) Normalized() Vec2 {
	length := v.Length()
	if length < 1e-9 {
		return Vec2{}
	}
	return Vec2{X: v.X / length, Y: v.Y / length}
}

// DistanceTo 两点距离
func (v Vec2) DistanceTo(other Vec2) float64 {
	return v.Sub(other).Length()
}

// Rect 矩形区域（MinX/MinY 为左上角）
type Rect struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// ClampPoint 将点约束到矩形内
func (r Rect) ClampPoint(p Vec2) Vec2 {
	return Vec2{
		X: ClampFloat(p.X, r.MinX, r.MaxX),
		Y: ClampFloat(p.Y, r.MinY, r.MaxY),
	}
}

// Width 矩形宽度
func (r Rect) Width() float64 {
	return r.MaxX - r.MinX
}

// Height 矩形高度
func (r Rect) Height() float64 {
	return r.MaxY - r.MinY
}
