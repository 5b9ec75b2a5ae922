package utils

import (
	"math"
	"testing"
)

// TestClampFloat 测试浮点数范围约束
func TestClampFloat(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "范围内不变", v: 1.5, min: 0.4, max: 4.0, expected: 1.5},
		{name: "低于下限取下限", v: 0.1, min: 0.4, max: 4.0, expected: 0.4},
		{name: "高于上限取上限", v: 9.0, min: 0.4, max: 4.0, expected: 4.0},
		{name: "NaN 取下限", v: math.NaN(), min: 0.4, max: 4.0, expected: 0.4},
		{name: "正无穷取下限", v: math.Inf(1), min: 0.4, max: 4.0, expected: 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClampFloat(tt.v, tt.min, tt.max)
			if result != tt.expected {
				t.Errorf("Expected %.4f, got %.4f", tt.expected, result)
			}
		})
	}
}

// TestCoerceFloat 测试任意类型到浮点数的安全提取
func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		name     string
		v        interface{}
		fallback float64
		expected float64
	}{
		{name: "float64 直接返回", v: 2.5, fallback: 1.0, expected: 2.5},
		{name: "int 转换", v: 3, fallback: 1.0, expected: 3.0},
		{name: "数字字符串解析", v: "1.75", fallback: 1.0, expected: 1.75},
		{name: "非数字字符串回退", v: "abc", fallback: 1.0, expected: 1.0},
		{name: "nil 回退", v: nil, fallback: 0.5, expected: 0.5},
		{name: "布尔值回退", v: true, fallback: 2.0, expected: 2.0},
		{name: "NaN 回退", v: math.NaN(), fallback: 1.0, expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CoerceFloat(tt.v, tt.fallback)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Expected %.4f, got %.4f", tt.expected, result)
			}
		})
	}
}

// TestCoerceInt 测试任意类型到整数的安全提取
func TestCoerceInt(t *testing.T) {
	tests := []struct {
		name     string
		v        interface{}
		fallback int
		expected int
	}{
		{name: "int 直接返回", v: 7, fallback: 0, expected: 7},
		{name: "浮点向零取整", v: 3.9, fallback: 0, expected: 3},
		{name: "数字字符串解析", v: "12", fallback: 0, expected: 12},
		{name: "非法字符串回退", v: "x", fallback: 4, expected: 4},
		{name: "nil 回退", v: nil, fallback: -1, expected: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CoerceInt(tt.v, tt.fallback)
			if result != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, result)
			}
		})
	}
}

// TestCoerceStringSlice 测试字符串列表提取
func TestCoerceStringSlice(t *testing.T) {
	t.Run("混合类型只保留非空字符串", func(t *testing.T) {
		raw := []interface{}{"ground", 3, "", "ranged", nil}
		result := CoerceStringSlice(raw)
		if len(result) != 2 || result[0] != "ground" || result[1] != "ranged" {
			t.Errorf("Expected [ground ranged], got %v", result)
		}
	})

	t.Run("非列表输入返回 nil", func(t *testing.T) {
		if result := CoerceStringSlice("ground"); result != nil {
			t.Errorf("Expected nil, got %v", result)
		}
	})
}

// TestCoerceFloatSlice 测试浮点列表提取（负数截断为0）
func TestCoerceFloatSlice(t *testing.T) {
	raw := []interface{}{55.0, 30, -10.0, "15"}
	result := CoerceFloatSlice(raw)
	expected := []float64{55, 30, 0, 15}
	if len(result) != len(expected) {
		t.Fatalf("Expected length %d, got %d", len(expected), len(result))
	}
	for i := range expected {
		if math.Abs(result[i]-expected[i]) > 1e-9 {
			t.Errorf("Index %d: expected %.2f, got %.2f", i, expected[i], result[i])
		}
	}
}
